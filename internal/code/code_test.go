package code

import "testing"

func TestLookupKnownOpcodes(t *testing.T) {
	for op := Push; op <= Out; op++ {
		if _, err := Lookup(op); err != nil {
			t.Errorf("Lookup(%d) returned error: %s", op, err)
		}
	}
}

func TestLookupUnknownOpcode(t *testing.T) {
	if _, err := Lookup(Op(999)); err == nil {
		t.Fatal("expected error for unknown opcode")
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		instr Instruction
		want  string
	}{
		{MakePush(42), "push 42"},
		{Make(Add), "add"},
		{Make(Roll), "roll"},
	}
	for _, tt := range tests {
		if got := tt.instr.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMakePushPanicsWithoutPush(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when Make is called with Push")
		}
	}()
	Make(Push)
}
