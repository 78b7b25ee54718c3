package model

import (
	"sort"
	"strconv"
	"strings"
)

// NormalizeCourseIDs убирает дубликаты, сохраняя порядок первого вхождения.
// Списки курсов расписаний и слотов всегда хранятся нормализованными.
func NormalizeCourseIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CourseSetKey returns an order-independent key for a course-id set.
// Used by the generation engine to compare course sets of slots.
func CourseSetKey(ids []int) string {
	norm := NormalizeCourseIDs(ids)
	sort.Ints(norm)
	parts := make([]string, len(norm))
	for i, id := range norm {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
