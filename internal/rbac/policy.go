package rbac

// Logical operations guarded by the access policy. Every HTTP route
// declares exactly one of these; the superadmin bypass is applied
// uniformly by the Guard, never per route.
const (
	OpViewAuditLogs   = "view_audit_logs"
	OpExportAuditLogs = "export_audit_logs"

	OpViewUsers   = "view_users"
	OpManageUsers = "manage_users"

	OpViewPatients = "view_patients"
	OpEditPatients = "edit_patients"

	OpViewAppointments = "view_appointments"
	OpEditAppointments = "edit_appointments"

	OpCreateDoctorNote = "create_doctor_note"
	OpViewDoctorNotes  = "view_doctor_notes"

	OpManagePaystubs  = "manage_paystubs"
	OpViewOwnPaystubs = "view_own_paystubs"

	OpViewTelephonyLogs = "view_telephony_logs"

	OpViewJobs = "view_jobs"
)

// Policy maps a logical operation to the roles permitted to perform it.
// Static configuration; superadmin is implicitly a member of every
// non-empty set and therefore never listed.
type Policy map[string]RoleSet

// DefaultPolicy returns the canonical operation table.
func DefaultPolicy() Policy {
	return Policy{
		OpViewAuditLogs:   NewRoleSet(RoleAdmin),
		OpExportAuditLogs: NewRoleSet(RoleAdmin),

		OpViewUsers:   NewRoleSet(RoleAdmin),
		OpManageUsers: NewRoleSet(RoleAdmin),

		OpViewPatients: NewRoleSet(RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist),
		OpEditPatients: NewRoleSet(RoleAdmin, RoleReceptionist),

		OpViewAppointments: NewRoleSet(RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist),
		OpEditAppointments: NewRoleSet(RoleAdmin, RoleReceptionist),

		OpCreateDoctorNote: NewRoleSet(RoleDoctor),
		OpViewDoctorNotes:  NewRoleSet(RoleAdmin, RoleDoctor, RoleNurse),

		OpManagePaystubs:  NewRoleSet(RoleAdmin),
		OpViewOwnPaystubs: NewRoleSet(RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RoleStaff),

		OpViewTelephonyLogs: NewRoleSet(RoleAdmin),

		OpViewJobs: NewRoleSet(RoleAdmin),
	}
}

// Required looks up the role set for an operation.
func (p Policy) Required(operation string) (RoleSet, bool) {
	set, ok := p[operation]
	return set, ok
}
