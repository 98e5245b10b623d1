// Package teachable mirrors students, courses and enrollments into a
// Teachable school.
package teachable

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// ID is a Teachable object id. The API returns numbers; ids are kept as strings locally.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

type User struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Enrollment struct {
	ID       ID `json:"id"`
	UserID   ID `json:"user_id"`
	CourseID ID `json:"course_id"`
}

type Course struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Headline    string  `json:"headline"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Published   bool    `json:"published"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("teachable: status %d: %s", e.Status, e.Body)
}

// Client calls the Teachable REST API with a school API key.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apiKey", apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	c.JSONMarshal = sonic.Marshal
	c.JSONUnmarshal = sonic.Unmarshal
	return &Client{http: c}
}

func (c *Client) CreateUser(ctx context.Context, name, email, password string) (*User, error) {
	var out User
	err := c.post(ctx, "/users", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EnrollUser(ctx context.Context, userID, courseID string) (*Enrollment, error) {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("teachable: invalid user id %q", userID)
	}
	cid, err := strconv.ParseInt(courseID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("teachable: invalid course id %q", courseID)
	}
	var out Enrollment
	if err := c.post(ctx, "/enrollments", map[string]int64{"user_id": uid, "course_id": cid}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCourse(ctx context.Context, in Course) (*Course, error) {
	var out Course
	if err := c.post(ctx, "/courses", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCourse(ctx context.Context, id string) (*Course, error) {
	var out Course
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/courses/" + id)
	if err != nil {
		return nil, fmt.Errorf("teachable: get course: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(result).
		Post(path)
	if err != nil {
		return fmt.Errorf("teachable: POST %s: %w", path, err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
