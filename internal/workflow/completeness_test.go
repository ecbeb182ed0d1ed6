package workflow

import (
	"testing"
	"time"

	"clickdone/internal/database"
)

func TestCheckCompleteness(t *testing.T) {
	budget := 800.0
	deadline := time.Now().AddDate(0, 0, 7)

	cases := []struct {
		name string
		req  database.WebsiteRequest
		want Completeness
	}{
		{
			name: "empty draft",
			req:  database.WebsiteRequest{},
			want: Completeness{},
		},
		{
			name: "title without description is not basic-complete",
			req:  database.WebsiteRequest{Title: "Bakery Site"},
			want: Completeness{},
		},
		{
			name: "basic complete",
			req:  database.WebsiteRequest{Title: "Bakery Site", Description: "A site"},
			want: Completeness{Basic: true},
		},
		{
			name: "color scheme alone satisfies design",
			req:  database.WebsiteRequest{ColorScheme: "warm"},
			want: Completeness{Design: true},
		},
		{
			name: "style description alone satisfies design",
			req:  database.WebsiteRequest{StyleDescription: "minimal"},
			want: Completeness{Design: true},
		},
		{
			name: "blank requirement entries do not count",
			req:  database.WebsiteRequest{FunctionalRequirements: []string{"", "   "}},
			want: Completeness{},
		},
		{
			name: "one real requirement satisfies functional",
			req:  database.WebsiteRequest{FunctionalRequirements: []string{"", "Online ordering"}},
			want: Completeness{Functional: true},
		},
		{
			name: "budget alone satisfies timeline",
			req:  database.WebsiteRequest{Budget: &budget},
			want: Completeness{Timeline: true},
		},
		{
			name: "deadline alone satisfies timeline",
			req:  database.WebsiteRequest{Deadline: &deadline},
			want: Completeness{Timeline: true},
		},
		{
			name: "expected timeline alone satisfies timeline",
			req:  database.WebsiteRequest{ExpectedTimeline: "4-6 weeks"},
			want: Completeness{Timeline: true},
		},
		{
			name: "all sections",
			req: database.WebsiteRequest{
				Title:                  "Bakery Site",
				Description:            "A site",
				ColorScheme:            "warm",
				FunctionalRequirements: []string{"Online ordering"},
				Budget:                 &budget,
			},
			want: Completeness{Basic: true, Design: true, Functional: true, Timeline: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckCompleteness(&tc.req)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			wantComplete := tc.want.Basic && tc.want.Design && tc.want.Functional && tc.want.Timeline
			if got.Complete() != wantComplete {
				t.Fatalf("Complete() = %v, want %v", got.Complete(), wantComplete)
			}
		})
	}
}
