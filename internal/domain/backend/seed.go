package backend

import (
	"encoding/json"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/db"
)

// SeedRows converts a dataset into entity rows. Employee passwords are
// stored as bcrypt hashes.
func SeedRows(ds kpi.Dataset) ([]db.SeedRow, error) {
	var rows []db.SeedRow
	add := func(kind, id string, v any) error {
		payload, err := json.Marshal(v)
		if err != nil {
			return err
		}
		rows = append(rows, db.SeedRow{Kind: kind, ID: id, Payload: payload})
		return nil
	}

	for _, d := range ds.Departments {
		if err := add(KindDepartments, d.ID, d); err != nil {
			return nil, err
		}
	}
	for _, e := range ds.Employees {
		if e.Password != "" && !isHashed(e.Password) {
			hash, err := auth.HashPassword(e.Password)
			if err != nil {
				return nil, err
			}
			e.Password = hash
		}
		if err := add(KindEmployees, e.ID, e); err != nil {
			return nil, err
		}
	}
	for _, k := range ds.KPIs {
		if err := add(KindKPIs, k.ID, k); err != nil {
			return nil, err
		}
	}
	for _, a := range ds.Assignments {
		if err := add(KindAssignments, a.ID, a); err != nil {
			return nil, err
		}
	}
	for _, a := range ds.Activities {
		if err := add(KindActivities, a.ID, a); err != nil {
			return nil, err
		}
	}
	for _, r := range ds.Records {
		if err := add(KindRecords, r.ID, r); err != nil {
			return nil, err
		}
	}
	for _, r := range ds.LevelRules {
		if err := add(KindLevelRules, r.ID, r); err != nil {
			return nil, err
		}
	}
	for _, c := range ds.Competencies {
		if err := add(KindCompetencies, c.ID, c); err != nil {
			return nil, err
		}
	}
	for _, r := range ds.CompetencyRecords {
		if err := add(KindCompetencyRecords, r.ID, r); err != nil {
			return nil, err
		}
	}
	return rows, nil
}
