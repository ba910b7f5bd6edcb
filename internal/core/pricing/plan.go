package pricing

import "errors"

// Plan is a subscription tier shown on the pricing page
type Plan struct {
	Name     string   `yaml:"name" json:"name"`
	Price    string   `yaml:"price" json:"price"`
	Features []string `yaml:"features" json:"features"`
	ID       int      `yaml:"id" json:"id"`
}

// ErrPlanNotFound is returned when a plan ID is not in the catalog
var ErrPlanNotFound = errors.New("plan not found")

// DefaultPlans is served when no catalog file is configured
func DefaultPlans() []Plan {
	return []Plan{
		{ID: 1, Name: "Starter", Price: "$0", Features: []string{"Unlimited reading", "Like and comment on posts"}},
		{ID: 2, Name: "Writer", Price: "$9/mo", Features: []string{"Publish posts", "Image uploads", "Title search placement"}},
		{ID: 3, Name: "Studio", Price: "$29/mo", Features: []string{"Everything in Writer", "Team authors", "Priority support"}},
	}
}
