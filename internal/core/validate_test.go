package core

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_TorqueScenario(t *testing.T) {
	a := mkTable(t, []string{"id", "DriveTorque"},
		[]any{"1", "0.5"},
		[]any{"2", "-2"},
	)
	b := mkTable(t, []string{"id", "DriveTorque"},
		[]any{"1", "0.5"},
		[]any{"2", "abc"},
	)

	res, err := Validate(a, DefaultRuleSet(), ValidateOptions{KeyColumn: "id"})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, ValidationIssue{
		Row:     1,
		RowKey:  "2",
		Column:  "DriveTorque",
		Value:   a.Cell(1, "DriveTorque"),
		Kind:    OutOfRange,
		Rule:    "drive-torque",
		Message: "Torque out of expected range (-1 to 1)",
	}, res.Issues[0])

	res, err = Validate(b, DefaultRuleSet(), ValidateOptions{KeyColumn: "id"})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "2", res.Issues[0].RowKey)
	assert.Equal(t, "abc", res.Issues[0].Value.String())
	assert.Equal(t, NonNumeric, res.Issues[0].Kind)
	assert.Equal(t, "Non-numeric DriveTorque", res.Issues[0].Message)
}

func TestValidate_FlowColumns(t *testing.T) {
	tbl := mkTable(t, []string{"InletFlow", "OutletFlow", "flowrate"},
		[]any{"-3", "2", "-9"},
		[]any{"N/A", "0", "x"},
		[]any{"0", nil, "1"},
	)

	res, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 2, "Flow match is case-sensitive and nulls are skipped")

	assert.Equal(t, NegativeFlow, res.Issues[0].Kind)
	assert.Equal(t, "InletFlow", res.Issues[0].Column)
	assert.Equal(t, "0", res.Issues[0].RowKey)
	assert.Equal(t, "Negative flow value", res.Issues[0].Message)

	assert.Equal(t, NonNumericFlow, res.Issues[1].Kind)
	assert.Equal(t, "N/A", res.Issues[1].Value.String())
	assert.Equal(t, "1", res.Issues[1].RowKey)
}

func TestValidate_DriveSpeed(t *testing.T) {
	tests := []struct {
		value    string
		wantKind IssueKind
	}{
		{"0", ""},
		{"12.5", ""},
		{" 3 ", ""},
		{"1e3", ""},
		{"-0.001", Negative},
		{"fast", NonNumeric},
		{"NaN", Negative},
		{"1e400", ""},
		{"-1e400", Negative},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			tbl := mkTable(t, []string{"DriveSpeed"}, []any{tt.value})
			res, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{})
			require.NoError(t, err)
			if tt.wantKind == "" {
				assert.Empty(t, res.Issues)
				return
			}
			require.Len(t, res.Issues, 1)
			assert.Equal(t, tt.wantKind, res.Issues[0].Kind)
		})
	}
}

func TestValidate_TorqueBoundsInclusive(t *testing.T) {
	tbl := mkTable(t, []string{"DriveTorque"},
		[]any{"-1"}, []any{"1"}, []any{"1.0"}, []any{"1.0001"}, []any{"-1.5"},
	)
	res, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, 3, res.Issues[0].Row)
	assert.Equal(t, 4, res.Issues[1].Row)
}

func TestValidate_OverflowIsOutOfRange(t *testing.T) {
	tbl := mkTable(t, []string{"DriveTorque", "InletFlow"},
		[]any{"1e400", "-1e400"},
		[]any{"-1e400", "1e400"},
	)
	res, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{})
	require.NoError(t, err)

	var got []string
	for _, is := range res.Issues {
		got = append(got, is.RowKey+"/"+is.Column+"/"+string(is.Kind))
	}
	assert.Equal(t, []string{
		"0/DriveTorque/OutOfRange",
		"0/InletFlow/NegativeFlow",
		"1/DriveTorque/OutOfRange",
	}, got)
}

func TestValidate_NaNFailsBoundedRange(t *testing.T) {
	tbl := mkTable(t, []string{"DriveSpeed", "Note"}, []any{"NaN", "NaN"})
	rs := RuleSet{Rules: append(DefaultRuleSet().Rules, Rule{
		Selector: Selector{Column: "Note"}, NumericRequired: true, OnParseFail: NonNumeric,
	})}

	res, err := Validate(tbl, rs, ValidateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1, "NaN passes a rule with no range")
	assert.Equal(t, Negative, res.Issues[0].Kind)
	assert.Equal(t, "Negative DriveSpeed (value is NaN)", res.Issues[0].Message)
}

func TestValidate_RowMajorRuleMinor(t *testing.T) {
	tbl := mkTable(t, []string{"InletFlow", "DriveSpeed", "DriveTorque"},
		[]any{"-1", "-1", "5"},
		[]any{"ok", "1", "0"},
	)
	res, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{})
	require.NoError(t, err)

	var got []string
	for _, is := range res.Issues {
		got = append(got, is.RowKey+"/"+is.Column+"/"+string(is.Kind))
	}
	assert.Equal(t, []string{
		"0/DriveTorque/OutOfRange",
		"0/DriveSpeed/Negative",
		"0/InletFlow/NegativeFlow",
		"1/InletFlow/NonNumericFlow",
	}, got)
}

func TestValidate_KeyColumnMissingUsesPosition(t *testing.T) {
	tbl := mkTable(t, []string{"DriveSpeed"}, []any{"1"}, []any{"-1"})
	res, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{KeyColumn: "id"})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "1", res.Issues[0].RowKey)
}

func TestValidate_Idempotent(t *testing.T) {
	var rows [][]any
	for i := range 120 {
		rows = append(rows, []any{strconv.Itoa(i), strconv.Itoa(i - 60), "bad" + strconv.Itoa(i%2)})
	}
	tbl := mkTable(t, []string{"id", "DriveSpeed", "MainFlow"}, rows...)

	first, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{KeyColumn: "id"})
	require.NoError(t, err)
	second, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{KeyColumn: "id"})
	require.NoError(t, err)
	assert.Equal(t, first.Issues, second.Issues)

	par, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{KeyColumn: "id", Workers: 7})
	require.NoError(t, err)
	assert.Equal(t, first.Issues, par.Issues)
	assert.Len(t, first.Issues, 60+120)
}

func TestValidate_MaxRows(t *testing.T) {
	tbl := mkTable(t, []string{"DriveSpeed"}, []any{"1"}, []any{"-1"})
	res, err := Validate(tbl, DefaultRuleSet(), ValidateOptions{MaxRows: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
	assert.NotNil(t, res.Issues)
	assert.True(t, res.Truncated)
	assert.Equal(t, 1, res.RowsChecked)
}

func TestValidate_CustomRules(t *testing.T) {
	rs := RuleSet{Rules: []Rule{
		{
			Selector:    Selector{Pattern: `^Temp\d+$`},
			Range:       Range{Max: bound(100)},
			OnRangeFail: "TooHot",
		},
	}}
	tbl := mkTable(t, []string{"Temp1", "Temp2", "TempAvg"},
		[]any{"150", "n/a", "500"},
	)

	res, err := Validate(tbl, rs, ValidateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1, "non-numeric values are ignored when not required")
	assert.Equal(t, "Temp1", res.Issues[0].Column)
	assert.Equal(t, IssueKind("TooHot"), res.Issues[0].Kind)
	assert.Equal(t, "Temp1 out of range (<= 100)", res.Issues[0].Message)
}

func TestValidate_MessageTemplate(t *testing.T) {
	rs := RuleSet{Rules: []Rule{{
		Selector:        Selector{Contains: "Pressure"},
		NumericRequired: true,
		OnParseFail:     NonNumeric,
		ParseMessage:    "{column} must be a number",
	}}}
	tbl := mkTable(t, []string{"InletPressure"}, []any{"high"})

	res, err := Validate(tbl, rs, ValidateOptions{})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "InletPressure must be a number", res.Issues[0].Message)
}

func TestValidate_ConfigurationErrorFailsFast(t *testing.T) {
	rs := RuleSet{Rules: []Rule{{NumericRequired: true, OnParseFail: NonNumeric}}}

	res, err := Validate(nil, rs, ValidateOptions{})
	assert.Nil(t, res)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrInvalidRuleSet)
}

func TestValidate_NilTable(t *testing.T) {
	_, err := Validate(nil, DefaultRuleSet(), ValidateOptions{})
	assert.ErrorIs(t, err, ErrNoTable)
	assert.Equal(t, "CMP003", MapError(err).Code)
}

func TestRuleSet_Check(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr string
	}{
		{
			name: "valid",
			rule: DefaultRuleSet().Rules[0],
		},
		{
			name:    "no selector",
			rule:    Rule{NumericRequired: true, OnParseFail: NonNumeric},
			wantErr: "no column selector",
		},
		{
			name: "two selectors",
			rule: Rule{
				Selector:        Selector{Column: "a", Contains: "b"},
				NumericRequired: true,
				OnParseFail:     NonNumeric,
			},
			wantErr: "more than one column selector",
		},
		{
			name: "bad pattern",
			rule: Rule{
				Selector:        Selector{Pattern: "("},
				NumericRequired: true,
				OnParseFail:     NonNumeric,
			},
			wantErr: "invalid pattern",
		},
		{
			name:    "checks nothing",
			rule:    Rule{Selector: Selector{Column: "a"}},
			wantErr: "checks nothing",
		},
		{
			name:    "missing parse kind",
			rule:    Rule{Selector: Selector{Column: "a"}, NumericRequired: true},
			wantErr: "on_parse_fail is required",
		},
		{
			name:    "missing range kind",
			rule:    Rule{Selector: Selector{Column: "a"}, Range: Range{Min: bound(0)}},
			wantErr: "on_range_fail is required",
		},
		{
			name: "inverted range",
			rule: Rule{
				Selector:    Selector{Column: "a"},
				Range:       Range{Min: bound(2), Max: bound(1)},
				OnRangeFail: OutOfRange,
			},
			wantErr: "min 2 is greater than max 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RuleSet{Rules: []Rule{tt.rule}}.Check()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRuleSet_CheckListsEveryProblem(t *testing.T) {
	rs := RuleSet{Rules: []Rule{
		{Name: "first"},
		{Selector: Selector{Column: "a"}, NumericRequired: true},
	}}
	err := rs.Check()

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Problems, 3)
	assert.Contains(t, cfgErr.Problems[0], "rule 1 (first)")
	assert.Contains(t, cfgErr.Problems[2], "rule 2")
}

func TestDefaultRuleSet(t *testing.T) {
	rs := DefaultRuleSet()
	require.NoError(t, rs.Check())
	require.Len(t, rs.Rules, 3)

	torque := rs.Rules[0]
	assert.Equal(t, "DriveTorque", torque.Selector.Column)
	assert.True(t, torque.NumericRequired)
	assert.Equal(t, -1.0, *torque.Range.Min)
	assert.Equal(t, 1.0, *torque.Range.Max)
	assert.Equal(t, OutOfRange, torque.OnRangeFail)
	assert.Equal(t, NonNumeric, torque.OnParseFail)

	speed := rs.Rules[1]
	assert.Equal(t, "DriveSpeed", speed.Selector.Column)
	assert.Equal(t, 0.0, *speed.Range.Min)
	assert.Nil(t, speed.Range.Max)
	assert.Equal(t, Negative, speed.OnRangeFail)

	flow := rs.Rules[2]
	assert.Equal(t, "Flow", flow.Selector.Contains)
	assert.Equal(t, NegativeFlow, flow.OnRangeFail)
	assert.Equal(t, NonNumericFlow, flow.OnParseFail)

	// Each call returns an independent copy.
	*DefaultRuleSet().Rules[0].Range.Min = 99
	assert.Equal(t, -1.0, *DefaultRuleSet().Rules[0].Range.Min)
}
