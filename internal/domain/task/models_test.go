package task

import (
	"testing"
	"time"
)

func strp(s string) *string { return &s }

func f64p(f float64) *float64 { return &f }

func timep(t time.Time) *time.Time { return &t }

func TestProgressOnly(t *testing.T) {
	tests := []struct {
		name string
		in   UpdateInput
		want bool
	}{
		{
			name: "status hours and notes only",
			in: UpdateInput{
				Status:          strp(StatusCompleted),
				ActualHours:     f64p(6.5),
				CompletionNotes: strp("done"),
			},
			want: true,
		},
		{
			name: "empty update",
			in:   UpdateInput{},
			want: true,
		},
		{
			name: "title edit",
			in:   UpdateInput{Title: strp("new title"), Status: strp(StatusInProgress)},
			want: false,
		},
		{
			name: "reassignment",
			in:   UpdateInput{AssignedTo: strp("e2")},
			want: false,
		},
		{
			name: "due date edit",
			in:   UpdateInput{DueDate: timep(time.Now())},
			want: false,
		},
		{
			name: "priority edit",
			in:   UpdateInput{Priority: strp(PriorityUrgent)},
			want: false,
		},
		{
			name: "estimate edit",
			in:   UpdateInput{EstimatedHours: f64p(12)},
			want: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.ProgressOnly(); got != tc.want {
				t.Fatalf("ProgressOnly() = %v, want %v", got, tc.want)
			}
		})
	}
}
