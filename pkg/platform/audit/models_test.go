package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventCategories(t *testing.T) {
	tests := []struct {
		event AuditEvent
		want  EventCategory
	}{
		{EventStatusListCreated, CategoryCompliance},
		{EventEntryToggled, CategoryCompliance},
		{EventToggleRejected, CategorySecurity},
		{EventEntryRead, CategoryOperations},
		{AuditEvent("something_else"), CategoryOperations},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Category())
		})
	}
}
