package enums

// Dashboard identifies the top-level area a resolved identity lands on.
// DashboardRestricted is the deliberate fail-closed outcome for profiles
// whose role data is unrecognized or incomplete.
type Dashboard string

const (
	DashboardMaster      Dashboard = "master"
	DashboardSchoolAdmin Dashboard = "school_admin"
	DashboardProfessor   Dashboard = "professor"
	DashboardAluno       Dashboard = "aluno"
	DashboardResponsavel Dashboard = "responsavel"
	DashboardSecretaria  Dashboard = "secretaria"
	DashboardRestricted  Dashboard = "restricted"
)

// String implements fmt.Stringer.
func (d Dashboard) String() string {
	return string(d)
}
