// Package recommend turns problem classifications into actionable messages.
package recommend

import (
	"fmt"

	"github.com/kilianp07/velomagg/core/efficiency"
)

// Category groups recommendations by the kind of action they call for.
type Category string

const (
	Urgent      Category = "urgent"
	Maintenance Category = "maintenance"
	Capacity    Category = "capacity"
	Deployment  Category = "deployment"
)

// Trigger thresholds.
const (
	// MaintenanceShare is the fraction of the network that must be low
	// efficiency (strictly more) before maintenance is recommended.
	MaintenanceShare = 0.10
	// DeploymentEfficiency is the mean efficiency below which the network
	// needs rebalancing.
	DeploymentEfficiency = 0.6
)

// Recommendation is a single message and the figures behind it.
type Recommendation struct {
	Category Category            `json:"category"`
	Problem  efficiency.Category `json:"problem,omitempty"`
	Count    int                 `json:"count,omitempty"`
	Value    float64             `json:"value,omitempty"`
	Message  string              `json:"message"`
}

// Set holds the recommendations of one run, per category.
type Set struct {
	Urgent      []Recommendation `json:"urgent"`
	Maintenance []Recommendation `json:"maintenance"`
	Capacity    []Recommendation `json:"capacity"`
	Deployment  []Recommendation `json:"deployment"`
}

// ByCategory returns the recommendations of c.
func (s Set) ByCategory(c Category) []Recommendation {
	switch c {
	case Urgent:
		return s.Urgent
	case Maintenance:
		return s.Maintenance
	case Capacity:
		return s.Capacity
	case Deployment:
		return s.Deployment
	}
	return nil
}

// Categories lists the categories in display order.
var Categories = []Category{Urgent, Maintenance, Capacity, Deployment}

// All returns every recommendation in display order.
func (s Set) All() []Recommendation {
	var out []Recommendation
	for _, c := range Categories {
		out = append(out, s.ByCategory(c)...)
	}
	return out
}

// Len returns the total number of recommendations.
func (s Set) Len() int {
	return len(s.Urgent) + len(s.Maintenance) + len(s.Capacity) + len(s.Deployment)
}

var problemMessages = map[efficiency.Category]string{
	efficiency.Inactive:    "%d stations out of service need immediate intervention",
	efficiency.AlwaysEmpty: "%d stations completely empty (urgent redistribution)",
	efficiency.AlwaysFull:  "%d stations completely full (urgent bike removal)",
	efficiency.Oversized:   "%d stations under-used (capacity reduction possible)",
	efficiency.Undersized:  "%d stations over-used (extension recommended)",
}

// Recommend builds the recommendation set. records must be the records the
// report was classified from; their count is the network size.
func Recommend(report efficiency.ProblemReport, records []efficiency.Record) Set {
	set := Set{
		Urgent:      []Recommendation{},
		Maintenance: []Recommendation{},
		Capacity:    []Recommendation{},
		Deployment:  []Recommendation{},
	}
	fromProblem := func(cat Category, p efficiency.Category) {
		n := report.Count(p)
		if n == 0 {
			return
		}
		rec := Recommendation{Category: cat, Problem: p, Count: n, Message: fmt.Sprintf(problemMessages[p], n)}
		switch cat {
		case Urgent:
			set.Urgent = append(set.Urgent, rec)
		case Capacity:
			set.Capacity = append(set.Capacity, rec)
		}
	}

	fromProblem(Urgent, efficiency.Inactive)
	fromProblem(Urgent, efficiency.AlwaysEmpty)
	fromProblem(Urgent, efficiency.AlwaysFull)

	total := len(records)
	if low := report.Count(efficiency.LowEfficiency); float64(low) > float64(total)*MaintenanceShare {
		set.Maintenance = append(set.Maintenance, Recommendation{
			Category: Maintenance,
			Problem:  efficiency.LowEfficiency,
			Count:    low,
			Value:    float64(low) / float64(total),
			Message:  fmt.Sprintf("%d stations have low efficiency (more than %.0f%% of the network)", low, MaintenanceShare*100),
		})
	}

	fromProblem(Capacity, efficiency.Oversized)
	fromProblem(Capacity, efficiency.Undersized)

	if total > 0 {
		if mean := efficiency.MeanEfficiency(records); mean < DeploymentEfficiency {
			set.Deployment = append(set.Deployment, Recommendation{
				Category: Deployment,
				Value:    mean,
				Message:  fmt.Sprintf("Overall network efficiency is low (%.1f%%): rebalancing needed", mean*100),
			})
		}
	}
	return set
}
