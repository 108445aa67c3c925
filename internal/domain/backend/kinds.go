package backend

import "kpiteam/internal/platform/bridge"

// Entity kinds, named after the getAllData collections.
const (
	KindDepartments       = "departments"
	KindEmployees         = "employees"
	KindKPIs              = "kpis"
	KindAssignments       = "assignments"
	KindActivities        = "activities"
	KindRecords           = "records"
	KindLevelRules        = "levelRules"
	KindCompetencies      = "competencies"
	KindCompetencyRecords = "competencyRecords"
)

// Kinds lists every collection returned by getAllData.
var Kinds = []string{
	KindDepartments,
	KindEmployees,
	KindKPIs,
	KindAssignments,
	KindActivities,
	KindRecords,
	KindLevelRules,
	KindCompetencies,
	KindCompetencyRecords,
}

var saveActions = map[string]string{
	bridge.ActionSaveDepartment:       KindDepartments,
	bridge.ActionSaveEmployee:         KindEmployees,
	bridge.ActionSaveKPI:              KindKPIs,
	bridge.ActionSaveActivity:         KindActivities,
	bridge.ActionSaveAssignment:       KindAssignments,
	bridge.ActionSaveRecord:           KindRecords,
	bridge.ActionSaveCompetencyRecord: KindCompetencyRecords,
}

var deleteActions = map[string]string{
	bridge.ActionDeleteDepartment:       KindDepartments,
	bridge.ActionDeleteEmployee:         KindEmployees,
	bridge.ActionDeleteKPI:              KindKPIs,
	bridge.ActionDeleteActivity:         KindActivities,
	bridge.ActionDeleteAssignment:       KindAssignments,
	bridge.ActionDeleteRecord:           KindRecords,
	bridge.ActionDeleteCompetencyRecord: KindCompetencyRecords,
}
