package puzzle

import (
	"testing"
)

// Make sure error messages never panic and are never empty.  The
// testing of individual cases (and removal of unused errors) we
// leave to the functional testing done of other files.
func TestErrorNoPanicNoEmpty(t *testing.T) {
	defer (func() {
		if e := recover(); e != nil {
			t.Fatalf("Panic during testing: %v", e)
		}
	})()
	for sc := int(UnknownScope); sc <= int(MaxScope); sc++ {
		for st := int(UnknownStructure); st < int(MaxStructure); st++ {
			for at := int(UnknownAttribute); at < int(MaxAttribute); at++ {
				for co := int(UnknownCondition); co < int(MaxCondition); co++ {
					e := Error{
						Scope:     ErrorScope(sc),
						Structure: ErrorStructure(st),
						Attribute: ErrorAttribute(at),
						Condition: ErrorCondition(co),
					}
					m := e.Error()
					t.Log(m)
					if len(m) == 0 {
						t.Errorf("Empty error message for %+v", e)
					}
				}
			}
		}
	}
}

// A pre-canned message wins over the generated one.
func TestErrorMessageOverride(t *testing.T) {
	e := Error{Scope: PieceScope, Condition: UnknownPieceCondition, Message: "custom"}
	if got := e.Error(); got != "custom" {
		t.Errorf("Message override: got %q, expected %q", got, "custom")
	}
}

func TestErrorReason(t *testing.T) {
	inputs := []ErrorCondition{
		OutOfBoundsCondition,
		OccupiedCondition,
		EdgeMismatchCondition,
		UnknownPieceCondition,
		GeneralCondition,
	}
	expected := []string{"OutOfBounds", "PositionOccupied", "EdgeMismatch", "", ""}
	for i, co := range inputs {
		e := Error{Condition: co}
		if got := e.Reason(); got != expected[i] {
			t.Errorf("Reason of condition %d: got %q, expected %q", co, got, expected[i])
		}
	}
}

func TestRangeError(t *testing.T) {
	e := rangeError(WidthAttribute, 1, MinSideLength, MaxSideLength)
	if e.Condition != TooSmallCondition {
		t.Errorf("Low value: got condition %d, expected %d", e.Condition, TooSmallCondition)
	}
	e = rangeError(WidthAttribute, 1000, MinSideLength, MaxSideLength)
	if e.Condition != TooLargeCondition {
		t.Errorf("High value: got condition %d, expected %d", e.Condition, TooLargeCondition)
	}
}
