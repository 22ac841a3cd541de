package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	Department  string
	CollegeYear int
	Semester    int
	Division    string
	Page        int
	PageSize    int
}
