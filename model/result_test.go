package model

import "testing"

func TestLetterGrade(t *testing.T) {
	cases := []struct {
		marks, max int
		want       string
	}{
		{95, 100, "A+"},
		{90, 100, "A+"},
		{85, 100, "A"},
		{72, 100, "B"},
		{65, 100, "C"},
		{50, 100, "D"},
		{30, 100, "F"},
		{0, 100, "F"},
		{45, 50, "A+"}, // percentage, not raw marks
		{10, 0, ""},    // malformed max
	}
	for _, tc := range cases {
		if got := LetterGrade(tc.marks, tc.max); got != tc.want {
			t.Errorf("LetterGrade(%d, %d) = %q, want %q", tc.marks, tc.max, got, tc.want)
		}
	}
}

func TestAnnouncementVisibleTo(t *testing.T) {
	cases := []struct {
		audience string
		role     string
		want     bool
	}{
		{AudienceAll, RoleStudent, true},
		{AudienceAll, RoleFaculty, true},
		{AudienceStudents, RoleStudent, true},
		{AudienceStudents, RoleFaculty, false},
		{AudienceStudents, RoleAdmin, true},
		{AudienceFaculty, RoleFaculty, true},
		{AudienceFaculty, RoleStudent, false},
		{AudienceFaculty, RoleAdmin, true},
		// anonymous visitors only see the public feed
		{AudienceAll, "", true},
		{AudienceStudents, "", false},
		{AudienceFaculty, "", false},
	}
	for _, tc := range cases {
		a := Announcement{Audience: tc.audience}
		if got := a.VisibleTo(tc.role); got != tc.want {
			t.Errorf("audience %q visible to %q = %v, want %v", tc.audience, tc.role, got, tc.want)
		}
	}
}
