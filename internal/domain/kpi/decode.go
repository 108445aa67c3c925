package kpi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FlexString accepts a JSON string, number, or boolean. Spreadsheet backends
// hand back numeric cells for codes, ids, and passwords.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*f = FlexString(strconv.FormatBool(b))
		return nil
	case '{', '[':
		return errors.New("expected a scalar value")
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid scalar %s", data)
	}
	*f = FlexString(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// FlexText is FlexString for free text: strings keep their whitespace and
// line breaks.
type FlexText string

func (f *FlexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexText(s)
		return nil
	}
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = FlexText(s)
	return nil
}

func (f FlexText) String() string {
	return string(f)
}

// FlexFloat accepts a JSON number or a numeric string. Empty strings are zero.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	raw := strings.TrimSuffix(strings.TrimSpace(string(s)), "%")
	if raw == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*f = FlexFloat(n)
	return nil
}

// FlexBool accepts a JSON boolean, "true"/"false" in any case, or 0/1.
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	switch strings.ToLower(string(s)) {
	case "", "false", "0", "no":
		*f = false
	case "true", "1", "yes":
		*f = true
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

// FlexFloatPtr is FlexFloat that remembers whether a value was present.
type FlexFloatPtr struct {
	Value *float64
}

func (f *FlexFloatPtr) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if strings.TrimSpace(string(s)) == "" {
		f.Value = nil
		return nil
	}
	var n FlexFloat
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	v := float64(n)
	f.Value = &v
	return nil
}

type wireDataset struct {
	Departments       []json.RawMessage `json:"departments"`
	Employees         []json.RawMessage `json:"employees"`
	KPIs              []json.RawMessage `json:"kpis"`
	Assignments       []json.RawMessage `json:"assignments"`
	Activities        []json.RawMessage `json:"activities"`
	Records           []json.RawMessage `json:"records"`
	LevelRules        []json.RawMessage `json:"levelRules"`
	Competencies      []json.RawMessage `json:"competencies"`
	CompetencyRecords []json.RawMessage `json:"competencyRecords"`
}

type wireDepartment struct {
	ID      FlexString `json:"id"`
	Code    FlexString `json:"code"`
	Name    FlexString `json:"name"`
	Manager FlexString `json:"manager"`
}

type wireEmployee struct {
	ID           FlexString `json:"id"`
	Code         FlexString `json:"code"`
	Name         FlexString `json:"name"`
	DepartmentID FlexString `json:"departmentId"`
	Position     FlexString `json:"position"`
	Email        FlexString `json:"email"`
	Role         FlexString `json:"role"`
	Password     FlexString `json:"password"`
	PhotoURL     FlexString `json:"photoUrl"`
}

type wireKPI struct {
	ID              FlexString          `json:"id"`
	Code            FlexString          `json:"code"`
	Name            FlexString          `json:"name"`
	Activity        FlexString          `json:"activity"`
	Weight          FlexFloat           `json:"weight"`
	Period          FlexString          `json:"period"`
	Description     FlexString          `json:"description"`
	EvaluationRules map[string][]string `json:"evaluationRules"`
}

type wireAssignment struct {
	ID           FlexString `json:"id"`
	EmployeeID   FlexString `json:"employeeId"`
	KPIID        FlexString `json:"kpiId"`
	Weight       FlexFloat  `json:"weight"`
	AssignedDate FlexString `json:"assignedDate"`
}

type wireActivity struct {
	ID          FlexString `json:"id"`
	KPIID       FlexString `json:"kpiId"`
	Code        FlexString `json:"code"`
	Name        FlexString `json:"name"`
	Description FlexString `json:"description"`
	Active      FlexBool   `json:"active"`
}

type wireRecord struct {
	ID             FlexString   `json:"id"`
	Date           FlexString   `json:"date"`
	EmployeeID     FlexString   `json:"employeeId"`
	KPIID          FlexString   `json:"kpiId"`
	ActivityID     FlexString   `json:"activityId"`
	ActivityName   FlexString   `json:"activityName"`
	Period         FlexString   `json:"period"`
	PeriodDetail   FlexString   `json:"periodDetail"`
	Level          FlexString   `json:"level"`
	Score          FlexFloat    `json:"score"`
	Weight         FlexFloat    `json:"weight"`
	WeightedScore  FlexFloat    `json:"weightedScore"`
	Note           FlexText     `json:"note"`
	UserNote       FlexText     `json:"userNote"`
	Progress       FlexFloatPtr `json:"progress"`
	DetailProgress FlexText     `json:"detailProgress"`
	ManagerComment FlexText     `json:"managerComment"`
}

type wireLevelRule struct {
	ID           FlexString `json:"id"`
	KPIID        FlexString `json:"kpiId"`
	Level        FlexString `json:"level"`
	Description  FlexText   `json:"description"`
	EmployeeID   FlexString `json:"employeeId"`
	EmployeeName FlexString `json:"employeeName"`
	KPIName      FlexString `json:"kpiName"`
}

type wireCompetency struct {
	ID                FlexString `json:"id"`
	Code              FlexString `json:"code"`
	Topic             FlexString `json:"topic"`
	Definition        FlexText   `json:"definition"`
	BehaviorIndicator FlexText   `json:"behaviorIndicator"`
	Weight            FlexFloat  `json:"weight"`
}

type wireCompetencyRecord struct {
	ID            FlexString `json:"id"`
	Date          FlexString `json:"date"`
	EmployeeID    FlexString `json:"employeeId"`
	CompetencyID  FlexString `json:"competencyId"`
	Period        FlexString `json:"period"`
	Level         FlexString `json:"level"`
	Score         FlexFloat  `json:"score"`
	Weight        FlexFloat  `json:"weight"`
	WeightedScore FlexFloat  `json:"weightedScore"`
}

// IsEmptyPayload reports whether a remote result carries no dataset at all.
func IsEmptyPayload(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}

// DecodeDataset parses a getAllData result. Records that cannot be parsed or
// fail validation are skipped and reported as rejected issues; tolerated
// normalizations are reported as plain issues. The error is non-nil only when
// the payload as a whole is not a dataset object.
func DecodeDataset(raw json.RawMessage) (Dataset, []DecodeIssue, error) {
	if IsEmptyPayload(raw) {
		return Dataset{}, nil, ErrEmptyDataset
	}
	var wire wireDataset
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Dataset{}, nil, fmt.Errorf("decode dataset: %w", err)
	}

	var issues []DecodeIssue
	ds := Dataset{
		Departments:       decodeEach(wire.Departments, "departments", &issues, departmentFromWire),
		Employees:         decodeEach(wire.Employees, "employees", &issues, employeeFromWire),
		KPIs:              decodeEach(wire.KPIs, "kpis", &issues, kpiFromWire),
		Assignments:       decodeEach(wire.Assignments, "assignments", &issues, assignmentFromWire),
		Activities:        decodeEach(wire.Activities, "activities", &issues, activityFromWire),
		Records:           decodeEach(wire.Records, "records", &issues, recordFromWire),
		LevelRules:        decodeEach(wire.LevelRules, "levelRules", &issues, levelRuleFromWire),
		Competencies:      decodeEach(wire.Competencies, "competencies", &issues, competencyFromWire),
		CompetencyRecords: decodeEach(wire.CompetencyRecords, "competencyRecords", &issues, competencyRecordFromWire),
	}
	return ds, issues, nil
}

type noter func(reason string)

func decodeEach[W any, T Entity[T]](raws []json.RawMessage, collection string, issues *[]DecodeIssue, convert func(W, noter) (T, error)) []T {
	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		var w W
		if err := json.Unmarshal(raw, &w); err != nil {
			*issues = append(*issues, DecodeIssue{Collection: collection, Index: i, Reason: err.Error(), Rejected: true})
			continue
		}
		var notes []string
		item, err := convert(w, func(reason string) { notes = append(notes, reason) })
		id := item.EntityID()
		if err == nil {
			err = Validate(item)
		}
		if err != nil {
			*issues = append(*issues, DecodeIssue{Collection: collection, Index: i, ID: id, Reason: err.Error(), Rejected: true})
			continue
		}
		for _, note := range notes {
			*issues = append(*issues, DecodeIssue{Collection: collection, Index: i, ID: id, Reason: note})
		}
		out = append(out, item)
	}
	return out
}

// Validate checks v against its validate struct tags.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %s failed %s (value %q)", fe.Field(), fe.Tag(), fmt.Sprint(fe.Value()))
		}
		return err
	}
	return nil
}

// NormalizeRole lower-cases and trims a role. Anything other than manager or
// employee becomes employee; ok is false in that case.
func NormalizeRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if role.Valid() {
		return role, true
	}
	return RoleEmployee, false
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func departmentFromWire(w wireDepartment, _ noter) (Department, error) {
	return Department{ID: w.ID.String(), Code: w.Code.String(), Name: w.Name.String(), Manager: w.Manager.String()}, nil
}

func employeeFromWire(w wireEmployee, note noter) (Employee, error) {
	role, ok := NormalizeRole(w.Role.String())
	if !ok {
		note(fmt.Sprintf("unrecognized role %q defaulted to %s", w.Role, RoleEmployee))
	}
	return Employee{
		ID:           w.ID.String(),
		Code:         w.Code.String(),
		Name:         w.Name.String(),
		DepartmentID: w.DepartmentID.String(),
		Position:     w.Position.String(),
		Email:        NormalizeEmail(w.Email.String()),
		Role:         role,
		Password:     w.Password.String(),
		PhotoURL:     w.PhotoURL.String(),
	}, nil
}

func kpiFromWire(w wireKPI, _ noter) (KPI, error) {
	k := KPI{
		ID:          w.ID.String(),
		Code:        w.Code.String(),
		Name:        w.Name.String(),
		Activity:    w.Activity.String(),
		Weight:      float64(w.Weight),
		Period:      PeriodType(strings.ToLower(w.Period.String())),
		Description: w.Description.String(),
	}
	if len(w.EvaluationRules) > 0 {
		k.EvaluationRules = make(map[Level][]string, len(w.EvaluationRules))
		for rawLevel, lines := range w.EvaluationRules {
			level, err := ParseLevel(rawLevel)
			if err != nil {
				return k, err
			}
			k.EvaluationRules[level] = lines
		}
	}
	return k, nil
}

func assignmentFromWire(w wireAssignment, _ noter) (Assignment, error) {
	return Assignment{
		ID:           w.ID.String(),
		EmployeeID:   w.EmployeeID.String(),
		KPIID:        w.KPIID.String(),
		Weight:       float64(w.Weight),
		AssignedDate: w.AssignedDate.String(),
	}, nil
}

func activityFromWire(w wireActivity, _ noter) (Activity, error) {
	return Activity{
		ID:          w.ID.String(),
		KPIID:       w.KPIID.String(),
		Code:        w.Code.String(),
		Name:        w.Name.String(),
		Description: w.Description.String(),
		Active:      bool(w.Active),
	}, nil
}

func recordFromWire(w wireRecord, _ noter) (Record, error) {
	return Record{
		ID:             w.ID.String(),
		Date:           w.Date.String(),
		EmployeeID:     w.EmployeeID.String(),
		KPIID:          w.KPIID.String(),
		ActivityID:     w.ActivityID.String(),
		ActivityName:   w.ActivityName.String(),
		Period:         w.Period.String(),
		PeriodDetail:   w.PeriodDetail.String(),
		Level:          Level(strings.ToUpper(w.Level.String())),
		Score:          float64(w.Score),
		Weight:         float64(w.Weight),
		WeightedScore:  float64(w.WeightedScore),
		Note:           w.Note.String(),
		UserNote:       w.UserNote.String(),
		Progress:       w.Progress.Value,
		DetailProgress: w.DetailProgress.String(),
		ManagerComment: w.ManagerComment.String(),
	}, nil
}

func levelRuleFromWire(w wireLevelRule, _ noter) (LevelRule, error) {
	return LevelRule{
		ID:           w.ID.String(),
		KPIID:        w.KPIID.String(),
		Level:        Level(strings.ToUpper(w.Level.String())),
		Description:  w.Description.String(),
		EmployeeID:   w.EmployeeID.String(),
		EmployeeName: w.EmployeeName.String(),
		KPIName:      w.KPIName.String(),
	}, nil
}

func competencyFromWire(w wireCompetency, _ noter) (Competency, error) {
	return Competency{
		ID:                w.ID.String(),
		Code:              w.Code.String(),
		Topic:             w.Topic.String(),
		Definition:        w.Definition.String(),
		BehaviorIndicator: w.BehaviorIndicator.String(),
		Weight:            float64(w.Weight),
	}, nil
}

func competencyRecordFromWire(w wireCompetencyRecord, _ noter) (CompetencyRecord, error) {
	return CompetencyRecord{
		ID:            w.ID.String(),
		Date:          w.Date.String(),
		EmployeeID:    w.EmployeeID.String(),
		CompetencyID:  w.CompetencyID.String(),
		Period:        w.Period.String(),
		Level:         Level(strings.ToUpper(w.Level.String())),
		Score:         float64(w.Score),
		Weight:        float64(w.Weight),
		WeightedScore: float64(w.WeightedScore),
	}, nil
}
