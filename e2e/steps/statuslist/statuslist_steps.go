package statuslist

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
}

// RegisterSteps registers status list step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &statusListSteps{tc: tc}

	ctx.Step(`^I create a status list of size (\d+) for purpose "([^"]*)"$`, steps.createStatusList)
	ctx.Step(`^I toggle entry (\d+)$`, steps.toggleEntry)
	ctx.Step(`^I fetch my status list$`, steps.fetchStatusList)
	ctx.Step(`^I read entry (\d+)$`, steps.readEntry)
	ctx.Step(`^I read entry (\d+) as raw bytes$`, steps.readEntryRaw)

	ctx.Step(`^the list should be (\d+) zero bytes$`, steps.listShouldBeZeroBytes)
	ctx.Step(`^the list bytes should be "([^"]*)"$`, steps.listBytesShouldBe)
	ctx.Step(`^the entry value should be (\d+)$`, steps.entryValueShouldBe)
	ctx.Step(`^the raw body should be the byte (\d+)$`, steps.rawBodyShouldBe)
}

type statusListSteps struct {
	tc TestContext
}

func (s *statusListSteps) createStatusList(ctx context.Context, size int, purpose string) error {
	return s.tc.POST("/status-list", map[string]any{"size": size, "purpose": purpose})
}

func (s *statusListSteps) toggleEntry(ctx context.Context, location int) error {
	return s.tc.POST("/status-list/toggle", map[string]any{"location": location})
}

func (s *statusListSteps) fetchStatusList(ctx context.Context) error {
	return s.tc.GET("/status-list", nil)
}

func (s *statusListSteps) readEntry(ctx context.Context, location int) error {
	return s.tc.GET("/status-list/entries/"+strconv.Itoa(location), nil)
}

func (s *statusListSteps) readEntryRaw(ctx context.Context, location int) error {
	return s.tc.GET("/status-list/entries/"+strconv.Itoa(location), map[string]string{
		"Accept": "application/octet-stream",
	})
}

func (s *statusListSteps) listBuffer() ([]byte, error) {
	value, err := s.tc.GetResponseField("list")
	if err != nil {
		return nil, err
	}
	encoded, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("list is %T, want base64 string", value)
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (s *statusListSteps) listShouldBeZeroBytes(ctx context.Context, n int) error {
	buf, err := s.listBuffer()
	if err != nil {
		return err
	}
	if !bytes.Equal(buf, make([]byte, n)) {
		return fmt.Errorf("expected %d zero bytes, got %v", n, buf)
	}
	return nil
}

// listBytesShouldBe compares against a comma separated list of byte values,
// e.g. "1,0,0,0,0,0,0,0".
func (s *statusListSteps) listBytesShouldBe(ctx context.Context, expected string) error {
	buf, err := s.listBuffer()
	if err != nil {
		return err
	}
	var want []byte
	for part := range strings.SplitSeq(expected, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 0, 8)
		if err != nil {
			return fmt.Errorf("bad expected byte %q: %w", part, err)
		}
		want = append(want, byte(n))
	}
	if !bytes.Equal(buf, want) {
		return fmt.Errorf("expected list %v, got %v", want, buf)
	}
	return nil
}

func (s *statusListSteps) entryValueShouldBe(ctx context.Context, expected int) error {
	value, err := s.tc.GetResponseField("value")
	if err != nil {
		return err
	}
	if n, ok := value.(float64); !ok || int(n) != expected {
		return fmt.Errorf("expected value %d, got %v", expected, value)
	}
	return nil
}

func (s *statusListSteps) rawBodyShouldBe(ctx context.Context, expected int) error {
	body := s.tc.GetLastResponseBody()
	if !bytes.Equal(body, []byte{byte(expected)}) {
		return fmt.Errorf("expected raw body [%d], got %v", expected, body)
	}
	return nil
}
