package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/model"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/endpoints"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/middleware"
)

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc           *TestContext
	authHeader   string
	forwardedFor string
	response     *http.Response
	responseBody []byte
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, s.tc.Reset()
	})

	// Fixture steps
	sc.Step(`^the back-office user (\d+) "([^"]*)" with email "([^"]*)"$`, s.theBackOfficeUser)
	sc.Step(`^the member (\d+) "([^"]*)" with email "([^"]*)"$`, s.theMember)
	sc.Step(`^the user group (\d+) "([^"]*)" with alias "([^"]*)"$`, s.theUserGroup)
	sc.Step(`^the entity (\d+) "([^"]*)"$`, s.theEntity)

	// Request steps
	sc.Step(`^I am authenticated as user (\d+)$`, s.iAmAuthenticatedAsUser)
	sc.Step(`^I am authenticated as the system$`, s.iAmAuthenticatedAsTheSystem)
	sc.Step(`^requests are forwarded for "([^"]*)"$`, s.requestsAreForwardedFor)
	sc.Step(`^I raise "([^"]*)" with:$`, s.iRaiseWith)
	sc.Step(`^I list entries with "([^"]*)"$`, s.iListEntriesWith)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the listing total should be (\d+)$`, s.theListingTotalShouldBe)

	// Audit trail steps
	sc.Step(`^the audit trail should contain (\d+) entr(?:y|ies)$`, s.theAuditTrailShouldContain)
	sc.Step(`^the latest entry should have:$`, s.theLatestEntryShouldHave)
	sc.Step(`^modifying the latest entry should fail$`, s.modifyingTheLatestEntryShouldFail)
}

// Fixture steps

func (s *StepsContext) theBackOfficeUser(id int, name, email string) error {
	return s.tc.DB.Create(&model.User{ID: id, Name: name, Email: email}).Error
}

func (s *StepsContext) theMember(id int, name, email string) error {
	return s.tc.DB.Create(&model.Member{ID: id, Name: name, Email: email}).Error
}

func (s *StepsContext) theUserGroup(id int, name, alias string) error {
	return s.tc.DB.Create(&model.UserGroup{
		ID:              id,
		Name:            name,
		Alias:           alias,
		AllowedSections: pq.StringArray{},
		Permissions:     pq.StringArray{},
	}).Error
}

func (s *StepsContext) theEntity(id int, name string) error {
	return s.tc.DB.Create(&model.Entity{ID: id, Name: name}).Error
}

// Request steps

func (s *StepsContext) iAmAuthenticatedAsUser(id int) error {
	return s.authenticate(strconv.Itoa(id))
}

func (s *StepsContext) iAmAuthenticatedAsTheSystem() error {
	return s.authenticate(middleware.SystemSubject)
}

func (s *StepsContext) authenticate(subject string) error {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(JWTSecret))
	if err != nil {
		return err
	}
	s.authHeader = "Bearer " + token
	return nil
}

func (s *StepsContext) requestsAreForwardedFor(addr string) error {
	s.forwardedFor = addr
	return nil
}

func (s *StepsContext) iRaiseWith(kind string, body *godog.DocString) error {
	return s.do(http.MethodPost, "/events/"+kind, []byte(body.Content))
}

func (s *StepsContext) iListEntriesWith(query string) error {
	return s.do(http.MethodGet, "/entries?"+query, nil)
}

func (s *StepsContext) do(method, path string, body []byte) error {
	req, err := http.NewRequest(method, s.tc.Server.URL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if s.authHeader != "" {
		req.Header.Set("Authorization", s.authHeader)
	}
	if s.forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", s.forwardedFor)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

// Response steps

func (s *StepsContext) theResponseStatusShouldBe(status int) error {
	if s.response == nil {
		return fmt.Errorf("no request was made")
	}
	if s.response.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, s.response.StatusCode, string(s.responseBody))
	}
	return nil
}

func (s *StepsContext) theListingTotalShouldBe(total int) error {
	var resp endpoints.EntriesResponse
	if err := json.Unmarshal(s.responseBody, &resp); err != nil {
		return fmt.Errorf("failed to decode listing: %w", err)
	}
	if resp.Total != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, resp.Total)
	}
	if len(resp.Entries) != total {
		return fmt.Errorf("expected %d listed entries, got %d", total, len(resp.Entries))
	}
	return nil
}

// Audit trail steps

func (s *StepsContext) theAuditTrailShouldContain(count int) error {
	var n int64
	if err := s.tc.DB.Model(&model.AuditEntry{}).Count(&n).Error; err != nil {
		return err
	}
	if n != int64(count) {
		return fmt.Errorf("expected %d audit entries, got %d", count, n)
	}
	return nil
}

func (s *StepsContext) theLatestEntryShouldHave(table *godog.Table) error {
	var entry model.AuditEntry
	if err := s.tc.DB.Order("id DESC").First(&entry).Error; err != nil {
		return fmt.Errorf("failed to load latest entry: %w", err)
	}

	affected := "NULL"
	if entry.AffectedDetails != nil {
		affected = *entry.AffectedDetails
	}
	columns := map[string]string{
		"performing_user_id": strconv.Itoa(entry.PerformingUserID),
		"performing_details": entry.PerformingDetails,
		"performing_ip":      entry.PerformingIP,
		"affected_user_id":   strconv.Itoa(entry.AffectedUserID),
		"affected_details":   affected,
		"event_type":         entry.EventType,
		"event_details":      entry.EventDetails,
	}

	for _, row := range table.Rows {
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected column and value, got %d cells", len(row.Cells))
		}
		column, want := row.Cells[0].Value, row.Cells[1].Value
		got, ok := columns[column]
		if !ok {
			return fmt.Errorf("unknown column %q", column)
		}
		if got != want {
			return fmt.Errorf("%s: expected %q, got %q", column, want, got)
		}
	}
	return nil
}

func (s *StepsContext) modifyingTheLatestEntryShouldFail() error {
	err := s.tc.DB.Exec(`UPDATE audit_entries SET event_details = 'tampered' WHERE id = (SELECT max(id) FROM audit_entries)`).Error
	if err == nil {
		return fmt.Errorf("expected update to be rejected")
	}
	if err := s.tc.DB.Exec(`DELETE FROM audit_entries`).Error; err == nil {
		return fmt.Errorf("expected delete to be rejected")
	}
	return nil
}
