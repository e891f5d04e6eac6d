package draw

import (
	"fmt"
	"sort"

	"github.com/Dosada05/football-tournaments/models"
)

// Readiness reports whether a group draw may run and, if not, why.
type Readiness struct {
	CanExecute    bool
	TotalAssigned int
	Reasons       []string
}

// BuildPots splits approved registrations into the four pots. The result always
// has MaxPotNumber entries, empty pots included; teams inside a pot are ordered
// by registration id so repeated reads render identically.
func BuildPots(registrations []models.Registration) ([]models.Pot, []models.Registration) {
	pots := make([]models.Pot, models.MaxPotNumber)
	for i := range pots {
		pots[i] = models.Pot{PotNumber: i + 1, Teams: []models.Registration{}}
	}
	unassigned := make([]models.Registration, 0)

	for _, reg := range registrations {
		if reg.PotNumber == nil || !models.ValidPotNumber(*reg.PotNumber) {
			unassigned = append(unassigned, reg)
			continue
		}
		idx := *reg.PotNumber - 1
		pots[idx].Teams = append(pots[idx].Teams, reg)
	}

	for i := range pots {
		sort.Slice(pots[i].Teams, func(a, b int) bool { return pots[i].Teams[a].ID < pots[i].Teams[b].ID })
		pots[i].Count = len(pots[i].Teams)
	}
	sort.Slice(unassigned, func(a, b int) bool { return unassigned[a].ID < unassigned[b].ID })

	return pots, unassigned
}

// CheckReadiness applies the draw gating rules:
//   - every registration sits in exactly one pot (assigned == registrations);
//   - all non-empty pots hold the same number of teams;
//   - the assigned teams split evenly into numberOfGroups groups.
//
// A pot distribution with zero teams is never ready.
func CheckReadiness(pots []models.Pot, totalRegistrations, numberOfGroups int) Readiness {
	var r Readiness
	for _, p := range pots {
		r.TotalAssigned += p.Count
	}

	if numberOfGroups < 1 {
		r.Reasons = append(r.Reasons, "number of groups must be at least 1")
	}
	if totalRegistrations == 0 {
		r.Reasons = append(r.Reasons, "there are no approved registrations to draw")
	}
	if r.TotalAssigned != totalRegistrations {
		r.Reasons = append(r.Reasons, fmt.Sprintf("%d of %d teams are not assigned to a pot",
			totalRegistrations-r.TotalAssigned, totalRegistrations))
	}

	size := -1
	balanced := true
	for _, p := range pots {
		if p.Count == 0 {
			continue
		}
		if size == -1 {
			size = p.Count
		} else if p.Count != size {
			balanced = false
		}
	}
	if !balanced {
		r.Reasons = append(r.Reasons, "all non-empty pots must contain the same number of teams ("+describeCounts(pots)+")")
	}

	if numberOfGroups >= 1 && r.TotalAssigned%numberOfGroups != 0 {
		r.Reasons = append(r.Reasons, fmt.Sprintf("%d assigned teams cannot be split evenly into %d groups",
			r.TotalAssigned, numberOfGroups))
	}

	r.CanExecute = len(r.Reasons) == 0
	if r.Reasons == nil {
		r.Reasons = []string{}
	}
	return r
}

func describeCounts(pots []models.Pot) string {
	s := ""
	for _, p := range pots {
		if p.Count == 0 {
			continue
		}
		if s != "" {
			s += ", "
		}
		s += fmt.Sprintf("pot %d: %d", p.PotNumber, p.Count)
	}
	return s
}
