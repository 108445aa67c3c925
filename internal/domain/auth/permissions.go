package auth

import "kpiteam/internal/domain/kpi"

const (
	PermStateRead       = "state.read"
	PermStateRefresh    = "state.refresh"
	PermDashboardRead   = "dashboard.read"
	PermDashboardTeam   = "dashboard.team"
	PermRecordsWrite    = "records.write"
	PermRecordsWriteAll = "records.write_all"
	PermCompetencyWrite = "competency.write"
	PermMasterDataWrite = "masterdata.write"
	PermNoticesRead     = "notices.read"
)

// RolePermissions mirrors the screens each role can reach: managers maintain
// master data and see the whole team, employees work on their own records.
var RolePermissions = map[kpi.Role][]string{
	kpi.RoleEmployee: {
		PermStateRead,
		PermStateRefresh,
		PermDashboardRead,
		PermRecordsWrite,
		PermCompetencyWrite,
		PermNoticesRead,
	},
	kpi.RoleManager: {
		PermStateRead,
		PermStateRefresh,
		PermDashboardRead,
		PermDashboardTeam,
		PermRecordsWrite,
		PermRecordsWriteAll,
		PermCompetencyWrite,
		PermMasterDataWrite,
		PermNoticesRead,
	},
}

func HasPermission(role kpi.Role, perm string) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
