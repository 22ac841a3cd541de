package scheduler

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// NormalizeName folds a free-text name for identity comparison: NFKC, trimmed,
// lower-cased. Teachers are identified by this string only.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(name)))
}

// SameTeacher reports whether two free-text teacher names refer to the same person.
// Blank names never match.
func SameTeacher(a, b string) bool {
	na := NormalizeName(a)
	return na != "" && na == NormalizeName(b)
}

// LectureKey groups sessions of the same subject, type and teacher.
func LectureKey(subjectName string, t models.EntryType, teacherName string) string {
	return NormalizeName(subjectName) + "|" + NormalizeName(string(t)) + "|" + NormalizeName(teacherName)
}

func requirementKey(r models.Requirement) string {
	return LectureKey(r.SubjectName, r.Type, r.TeacherName)
}

func entryKey(e models.Entry) string {
	return LectureKey(e.SubjectName, e.Type, e.TeacherName)
}

// ColorFromIndex spreads lecture colors evenly around the hue wheel.
func ColorFromIndex(index, total int) string {
	if total < 1 {
		total = 1
	}
	hue := ((index*360 + total/2) / total) % 360
	return fmt.Sprintf("hsl(%d, 78%%, 84%%)", hue)
}

// ColorForLecture derives a stable color from the lecture key.
func ColorForLecture(subjectName string, t models.EntryType, teacherName string) string {
	var hash int32
	for _, r := range LectureKey(subjectName, t, teacherName) {
		hash = (hash << 5) - hash + int32(r)
	}
	hue := int(hash) % 360
	if hue < 0 {
		hue = -hue
	}
	return fmt.Sprintf("hsl(%d, 74%%, 84%%)", hue)
}
