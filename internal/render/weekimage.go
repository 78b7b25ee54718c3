// Package render рисует недельную сетку слотов в PNG для выгрузки
// преподавателю.
package render

import (
	"bytes"
	"image/color"
	"strconv"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"otrabotki-service/internal/dateutil"
	"otrabotki-service/internal/model"
)

// Размеры холста и отступы
const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	legendWidth     = 120
	dayPaddingX     = 8
	minSlotHeight   = 8.0
	slotRadius      = 6.0
	shadowOffset    = 3.0
	daysInWeek      = 7
	hourPadding     = 2
	defaultMinHour  = 8
	defaultMaxHour  = 20
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 125}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}

	slotOpenColor   = color.RGBA{133, 193, 85, 220}
	slotFullColor   = color.RGBA{255, 182, 193, 255}
	slotShadowColor = color.RGBA{0, 0, 0, 20}
	slotTextColor   = color.RGBA{20, 24, 28, 230}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

type weekBounds struct {
	start time.Time
	end   time.Time
}

type hourRange struct {
	start int
	end   int
	total int
}

// WeekImage рисует слоты преподавателя на неделе, содержащей anchor
// (понедельник—воскресенье). На каждом слоте — время начала и занятость.
func WeekImage(anchor time.Time, slots []model.Slot) ([]byte, error) {
	week := mondayWeek(anchor)
	today := dateutil.Midnight(time.Now())
	highlightToday := !today.Before(week.start) && !today.After(week.end)

	byDay := groupByDay(slots, week)
	hours := clockRange(byDay)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / daysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, week)
	drawHourLabels(dc, hours, cellHeight)

	day := week.start
	for i := 0; i < daysInWeek; i++ {
		x := float64(leftLabelsWidth + i*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, i, highlightToday && day.Equal(today))
		drawDayHeader(dc, day, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, slot := range byDay[dateutil.FormatDate(day)] {
			drawSlot(dc, slot, x, y, dayWidth, hours, cellHeight)
		}
		day = day.AddDate(0, 0, 1)
	}

	drawLegend(dc, dayWidth)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// mondayWeek — границы недели Пн—Вс, содержащей дату
func mondayWeek(date time.Time) weekBounds {
	d := dateutil.Midnight(date)
	sinceMonday := dateutil.FromTimeWeekday(d.Weekday())
	start := d.AddDate(0, 0, -sinceMonday)
	return weekBounds{start: start, end: start.AddDate(0, 0, 6)}
}

func groupByDay(slots []model.Slot, week weekBounds) map[string][]model.Slot {
	byDay := make(map[string][]model.Slot)
	for i := range slots {
		date, err := dateutil.ParseDate(slots[i].Date)
		if err != nil {
			continue
		}
		if date.Before(week.start) || date.After(week.end) {
			continue
		}
		byDay[slots[i].Date] = append(byDay[slots[i].Date], slots[i])
	}
	return byDay
}

func clockRange(byDay map[string][]model.Slot) hourRange {
	minHour, maxHour := 24, 0
	for _, slots := range byDay {
		for i := range slots {
			fromH, _, err := dateutil.ParseClock(slots[i].TimeFrom)
			if err != nil {
				continue
			}
			toH, toM, err := dateutil.ParseClock(slots[i].TimeTo)
			if err != nil {
				continue
			}
			if toM > 0 {
				toH++
			}
			if fromH < minHour {
				minHour = fromH
			}
			if toH > maxHour {
				maxHour = toH
			}
		}
	}
	if minHour == 24 {
		minHour, maxHour = defaultMinHour, defaultMaxHour
	}
	start := minHour - hourPadding
	end := maxHour + hourPadding
	if start < 0 {
		start = 0
	}
	if end > 23 {
		end = 23
	}
	return hourRange{start: start, end: end, total: end - start + 1}
}

func drawHeader(dc *gg.Context, week weekBounds) {
	title := monthNameRussian(week.start.Month())
	if week.start.Month() != week.end.Month() {
		title += " - " + monthNameRussian(week.end.Month())
	}
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2+float64(leftLabelsWidth), float64(headerHeight)/8+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for i := 0; i < hours.total; i++ {
		y := float64(headerHeight) + float64(i)*cellHeight
		dc.DrawStringAnchored(twoDigits(hours.start+i)+":00", float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(weekdayShort(date.Weekday()), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for i := 0; i <= hours.total; i++ {
		hy := y + float64(i)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawSlot(dc *gg.Context, slot model.Slot, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	fromH, fromM, err := dateutil.ParseClock(slot.TimeFrom)
	if err != nil {
		return
	}
	toH, toM, err := dateutil.ParseClock(slot.TimeTo)
	if err != nil {
		return
	}

	startClock := float64(fromH) + float64(fromM)/60.0
	endClock := float64(toH) + float64(toM)/60.0
	slotY := y + (startClock-float64(hours.start))*cellHeight
	slotHeight := (endClock - startClock) * cellHeight
	if slotHeight < minSlotHeight {
		slotHeight = minSlotHeight
	}
	slotWidth := float64(dayWidth) - float64(dayPaddingX*2)

	fill := slotOpenColor
	if slot.IsFull() {
		fill = slotFullColor
	}

	dc.SetColor(slotShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, slotY+2+shadowOffset, slotWidth, slotHeight-4, slotRadius)
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotRadius)
	dc.Fill()

	dc.SetColor(darken(fill, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), slotY+2, slotWidth, slotHeight-4, slotRadius)
	dc.Stroke()

	dc.SetColor(slotTextColor)
	label := slot.TimeFrom + " " + strconv.Itoa(len(slot.Students)) + "/" + strconv.Itoa(slot.Capacity)
	dc.DrawStringAnchored(label, x+float64(dayPaddingX)+8, slotY+18, 0, 0)
	if slotHeight > 30 {
		dc.DrawStringAnchored(slot.Subject, x+float64(dayPaddingX)+8, slotY+34, 0, 0)
	}
}

func drawLegend(dc *gg.Context, dayWidth int) {
	legendX := float64(leftLabelsWidth + daysInWeek*dayWidth + 10)
	liY := float64(imageHeight) - 78.0

	items := []struct {
		label string
		clr   color.Color
	}{
		{"Есть места", slotOpenColor},
		{"Мест нет", slotFullColor},
	}
	boxW, boxH := 20.0, 14.0
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(legendX, liY, boxW, boxH, 3)
		dc.Fill()
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

func darken(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func weekdayShort(weekday time.Weekday) string {
	switch weekday {
	case time.Monday:
		return "Пн"
	case time.Tuesday:
		return "Вт"
	case time.Wednesday:
		return "Ср"
	case time.Thursday:
		return "Чт"
	case time.Friday:
		return "Пт"
	case time.Saturday:
		return "Сб"
	default:
		return "Вс"
	}
}

func monthNameRussian(month time.Month) string {
	names := [...]string{
		"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
		"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
	}
	return names[month-1]
}
