package bridge

// Remote action names understood by the backend.
const (
	ActionGetAllData = "getAllData"

	ActionSaveDepartment   = "saveDepartment"
	ActionDeleteDepartment = "deleteDepartment"
	ActionSaveEmployee     = "saveEmployee"
	ActionDeleteEmployee   = "deleteEmployee"
	ActionSaveKPI          = "saveKPI"
	ActionDeleteKPI        = "deleteKPI"
	ActionSaveActivity     = "saveActivity"
	ActionDeleteActivity   = "deleteActivity"
	ActionSaveAssignment   = "saveAssignment"
	ActionDeleteAssignment = "deleteAssignment"
	ActionSaveRecord       = "saveRecord"
	ActionDeleteRecord     = "deleteRecord"

	ActionSaveCompetencyRecord   = "saveCompetencyRecord"
	ActionDeleteCompetencyRecord = "deleteCompetencyRecord"
)

// Actions lists every known action name.
func Actions() []string {
	return []string{
		ActionGetAllData,
		ActionSaveDepartment, ActionDeleteDepartment,
		ActionSaveEmployee, ActionDeleteEmployee,
		ActionSaveKPI, ActionDeleteKPI,
		ActionSaveActivity, ActionDeleteActivity,
		ActionSaveAssignment, ActionDeleteAssignment,
		ActionSaveRecord, ActionDeleteRecord,
		ActionSaveCompetencyRecord, ActionDeleteCompetencyRecord,
	}
}
