// Package roster talks to Google Classroom to read course rosters.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const classroomBaseURL = "https://classroom.googleapis.com/v1"

// ErrCourseNotFound is returned when a course id does not exist or the
// account cannot see it.
var ErrCourseNotFound = errors.New("course not found")

// Course is a Classroom course as the roster sync sees it
type Course struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Section            string `json:"section"`
	Room               string `json:"room"`
	DescriptionHeading string `json:"descriptionHeading"`
	EnrollmentCode     string `json:"enrollmentCode"`
}

// Member is one person on a course roster. Email may be empty when the
// domain hides it; GoogleID is always set by the API.
type Member struct {
	Email    string
	FullName string
	GoogleID string
}

// Provider reads course rosters from an external class management system
type Provider interface {
	GetCourse(ctx context.Context, courseID string) (*Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	ListStudents(ctx context.Context, courseID string) ([]Member, error)
	ListTeachers(ctx context.Context, courseID string) ([]Member, error)
}

// ClassroomClient implements Provider against the Google Classroom REST
// API using a refresh-token grant.
type ClassroomClient struct {
	httpClient *http.Client
}

// NewClassroomClient builds a client from OAuth credentials. The refresh
// token must carry the roster read-only scopes.
func NewClassroomClient(ctx context.Context, clientID, clientSecret, refreshToken string) *ClassroomClient {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			"https://www.googleapis.com/auth/classroom.courses.readonly",
			"https://www.googleapis.com/auth/classroom.rosters.readonly",
			"https://www.googleapis.com/auth/classroom.profile.emails",
		},
	}
	token := &oauth2.Token{RefreshToken: refreshToken}
	return &ClassroomClient{httpClient: conf.Client(ctx, token)}
}

// GetCourse fetches one course by id
func (c *ClassroomClient) GetCourse(ctx context.Context, courseID string) (*Course, error) {
	var course Course
	err := c.get(ctx, fmt.Sprintf("%s/courses/%s", classroomBaseURL, url.PathEscape(courseID)), nil, &course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCourses fetches every active course visible to the account
func (c *ClassroomClient) ListCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	pageToken := ""
	for {
		var page struct {
			Courses       []Course `json:"courses"`
			NextPageToken string   `json:"nextPageToken"`
		}
		params := url.Values{"courseStates": {"ACTIVE"}}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		if err := c.get(ctx, classroomBaseURL+"/courses", params, &page); err != nil {
			return nil, err
		}
		courses = append(courses, page.Courses...)
		if page.NextPageToken == "" {
			return courses, nil
		}
		pageToken = page.NextPageToken
	}
}

type classroomProfile struct {
	ID           string `json:"id"`
	EmailAddress string `json:"emailAddress"`
	Name         struct {
		FullName string `json:"fullName"`
	} `json:"name"`
}

// ListStudents fetches the full student roster of a course
func (c *ClassroomClient) ListStudents(ctx context.Context, courseID string) ([]Member, error) {
	var members []Member
	pageToken := ""
	for {
		var page struct {
			Students []struct {
				Profile classroomProfile `json:"profile"`
			} `json:"students"`
			NextPageToken string `json:"nextPageToken"`
		}
		params := url.Values{"pageSize": {"100"}}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		endpoint := fmt.Sprintf("%s/courses/%s/students", classroomBaseURL, url.PathEscape(courseID))
		if err := c.get(ctx, endpoint, params, &page); err != nil {
			return nil, err
		}
		for _, s := range page.Students {
			members = append(members, memberFromProfile(s.Profile))
		}
		if page.NextPageToken == "" {
			return members, nil
		}
		pageToken = page.NextPageToken
	}
}

// ListTeachers fetches the teacher roster of a course
func (c *ClassroomClient) ListTeachers(ctx context.Context, courseID string) ([]Member, error) {
	var members []Member
	pageToken := ""
	for {
		var page struct {
			Teachers []struct {
				Profile classroomProfile `json:"profile"`
			} `json:"teachers"`
			NextPageToken string `json:"nextPageToken"`
		}
		params := url.Values{"pageSize": {"50"}}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		endpoint := fmt.Sprintf("%s/courses/%s/teachers", classroomBaseURL, url.PathEscape(courseID))
		if err := c.get(ctx, endpoint, params, &page); err != nil {
			return nil, err
		}
		for _, t := range page.Teachers {
			members = append(members, memberFromProfile(t.Profile))
		}
		if page.NextPageToken == "" {
			return members, nil
		}
		pageToken = page.NextPageToken
	}
}

func memberFromProfile(p classroomProfile) Member {
	return Member{
		Email:    p.EmailAddress,
		FullName: p.Name.FullName,
		GoogleID: p.ID,
	}
}

func (c *ClassroomClient) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build classroom request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call classroom API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrCourseNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("classroom API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode classroom response: %w", err)
	}
	return nil
}
