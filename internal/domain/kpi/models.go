package kpi

// Entity is implemented by every collection member. Ids are compared as
// strings; WithEntityID returns a copy carrying the given id.
type Entity[T any] interface {
	EntityID() string
	WithEntityID(id string) T
}

type Department struct {
	ID      string `json:"id" yaml:"id" validate:"required"`
	Code    string `json:"code" yaml:"code"`
	Name    string `json:"name" yaml:"name"`
	Manager string `json:"manager" yaml:"manager"`
}

type Employee struct {
	ID           string `json:"id" yaml:"id" validate:"required"`
	Code         string `json:"code" yaml:"code"`
	Name         string `json:"name" yaml:"name"`
	DepartmentID string `json:"departmentId" yaml:"departmentId"`
	Position     string `json:"position" yaml:"position"`
	Email        string `json:"email" yaml:"email"`
	Role         Role   `json:"role" yaml:"role" validate:"oneof=manager employee"`
	Password     string `json:"password,omitempty" yaml:"password,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
}

type KPI struct {
	ID              string             `json:"id" yaml:"id" validate:"required"`
	Code            string             `json:"code" yaml:"code"`
	Name            string             `json:"name" yaml:"name"`
	Activity        string             `json:"activity" yaml:"activity"`
	Weight          float64            `json:"weight" yaml:"weight"`
	Period          PeriodType         `json:"period" yaml:"period" validate:"omitempty,oneof=weekly monthly quarterly annual"`
	Description     string             `json:"description" yaml:"description"`
	EvaluationRules map[Level][]string `json:"evaluationRules,omitempty" yaml:"evaluationRules,omitempty"`
}

type Assignment struct {
	ID           string  `json:"id" yaml:"id" validate:"required"`
	EmployeeID   string  `json:"employeeId" yaml:"employeeId"`
	KPIID        string  `json:"kpiId" yaml:"kpiId"`
	Weight       float64 `json:"weight" yaml:"weight"`
	AssignedDate string  `json:"assignedDate" yaml:"assignedDate"`
}

type Activity struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	KPIID       string `json:"kpiId" yaml:"kpiId"`
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Active      bool   `json:"active" yaml:"active"`
}

// Record is one KPI evaluation of an employee for a period instance.
type Record struct {
	ID             string   `json:"id" yaml:"id" validate:"required"`
	Date           string   `json:"date" yaml:"date"`
	EmployeeID     string   `json:"employeeId" yaml:"employeeId"`
	KPIID          string   `json:"kpiId" yaml:"kpiId"`
	ActivityID     string   `json:"activityId" yaml:"activityId"`
	ActivityName   string   `json:"activityName" yaml:"activityName"`
	Period         string   `json:"period" yaml:"period"`
	PeriodDetail   string   `json:"periodDetail" yaml:"periodDetail"`
	Level          Level    `json:"level" yaml:"level" validate:"oneof=F UP PP GP CP EP"`
	Score          float64  `json:"score" yaml:"score"`
	Weight         float64  `json:"weight" yaml:"weight"`
	WeightedScore  float64  `json:"weightedScore" yaml:"weightedScore"`
	Note           string   `json:"note" yaml:"note"`
	UserNote       string   `json:"userNote" yaml:"userNote"`
	Progress       *float64 `json:"progress,omitempty" yaml:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	DetailProgress string   `json:"detailProgress,omitempty" yaml:"detailProgress,omitempty"`
	ManagerComment string   `json:"managerComment,omitempty" yaml:"managerComment,omitempty"`
}

// LevelRule overrides the rubric text for one KPI and level.
type LevelRule struct {
	ID           string `json:"id" yaml:"id" validate:"required"`
	KPIID        string `json:"kpiId" yaml:"kpiId"`
	Level        Level  `json:"level" yaml:"level" validate:"oneof=F UP PP GP CP EP"`
	Description  string `json:"description" yaml:"description"`
	EmployeeID   string `json:"employeeId,omitempty" yaml:"employeeId,omitempty"`
	EmployeeName string `json:"employeeName,omitempty" yaml:"employeeName,omitempty"`
	KPIName      string `json:"kpiName,omitempty" yaml:"kpiName,omitempty"`
}

type Competency struct {
	ID                string  `json:"id" yaml:"id" validate:"required"`
	Code              string  `json:"code" yaml:"code"`
	Topic             string  `json:"topic" yaml:"topic"`
	Definition        string  `json:"definition" yaml:"definition"`
	BehaviorIndicator string  `json:"behaviorIndicator" yaml:"behaviorIndicator"`
	Weight            float64 `json:"weight" yaml:"weight"`
}

type CompetencyRecord struct {
	ID            string  `json:"id" yaml:"id" validate:"required"`
	Date          string  `json:"date" yaml:"date"`
	EmployeeID    string  `json:"employeeId" yaml:"employeeId"`
	CompetencyID  string  `json:"competencyId" yaml:"competencyId"`
	Period        string  `json:"period" yaml:"period"`
	Level         Level   `json:"level" yaml:"level" validate:"oneof=F UP PP GP CP EP"`
	Score         float64 `json:"score" yaml:"score"`
	Weight        float64 `json:"weight" yaml:"weight"`
	WeightedScore float64 `json:"weightedScore" yaml:"weightedScore"`
}

// Dataset holds every collection, in the shape returned by getAllData.
type Dataset struct {
	Departments       []Department       `json:"departments" yaml:"departments"`
	Employees         []Employee         `json:"employees" yaml:"employees"`
	KPIs              []KPI              `json:"kpis" yaml:"kpis"`
	Assignments       []Assignment       `json:"assignments" yaml:"assignments"`
	Activities        []Activity         `json:"activities" yaml:"activities"`
	Records           []Record           `json:"records" yaml:"records"`
	LevelRules        []LevelRule        `json:"levelRules" yaml:"levelRules"`
	Competencies      []Competency       `json:"competencies" yaml:"competencies"`
	CompetencyRecords []CompetencyRecord `json:"competencyRecords" yaml:"competencyRecords"`
}

func (d Department) EntityID() string       { return d.ID }
func (e Employee) EntityID() string         { return e.ID }
func (k KPI) EntityID() string              { return k.ID }
func (a Assignment) EntityID() string       { return a.ID }
func (a Activity) EntityID() string         { return a.ID }
func (r Record) EntityID() string           { return r.ID }
func (r LevelRule) EntityID() string        { return r.ID }
func (c Competency) EntityID() string       { return c.ID }
func (r CompetencyRecord) EntityID() string { return r.ID }

func (d Department) WithEntityID(id string) Department {
	d.ID = id
	return d
}

func (e Employee) WithEntityID(id string) Employee {
	e.ID = id
	return e
}

func (k KPI) WithEntityID(id string) KPI {
	k.ID = id
	return k
}

func (a Assignment) WithEntityID(id string) Assignment {
	a.ID = id
	return a
}

func (a Activity) WithEntityID(id string) Activity {
	a.ID = id
	return a
}

func (r Record) WithEntityID(id string) Record {
	r.ID = id
	return r
}

func (r LevelRule) WithEntityID(id string) LevelRule {
	r.ID = id
	return r
}

func (c Competency) WithEntityID(id string) Competency {
	c.ID = id
	return c
}

func (r CompetencyRecord) WithEntityID(id string) CompetencyRecord {
	r.ID = id
	return r
}

// Public returns the employee without the shared secret.
func (e Employee) Public() Employee {
	e.Password = ""
	return e
}

// Clone returns a copy that shares no maps or slices with k.
func (k KPI) Clone() KPI {
	if k.EvaluationRules == nil {
		return k
	}
	rules := make(map[Level][]string, len(k.EvaluationRules))
	for level, lines := range k.EvaluationRules {
		rules[level] = append([]string(nil), lines...)
	}
	k.EvaluationRules = rules
	return k
}

// Clone returns a copy that does not share the progress value with r.
func (r Record) Clone() Record {
	if r.Progress != nil {
		p := *r.Progress
		r.Progress = &p
	}
	return r
}
