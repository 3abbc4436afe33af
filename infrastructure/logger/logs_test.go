package logger

import (
	"testing"
)

func TestParseAndSetLogLevels(t *testing.T) {
	first := RegisterSubSystem("TSTA")
	second := RegisterSubSystem("TSTB")

	tests := []struct {
		name          string
		level         string
		expectedError bool
		expectedFirst Level
		expectedSec   Level
	}{
		{name: "global", level: "debug", expectedFirst: LevelDebug, expectedSec: LevelDebug},
		{name: "per subsystem", level: "TSTA=trace,TSTB=warn", expectedFirst: LevelTrace, expectedSec: LevelWarn},
		{name: "invalid level", level: "loud", expectedError: true},
		{name: "unknown subsystem", level: "NOPE=info", expectedError: true},
		{name: "missing pair", level: "TSTA=info,warn", expectedError: true},
	}

	for _, test := range tests {
		first.SetLevel(LevelInfo)
		second.SetLevel(LevelInfo)
		err := ParseAndSetLogLevels(test.level)
		if test.expectedError {
			if err == nil {
				t.Errorf("%s: expected an error for %q", test.name, test.level)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %+v", test.name, err)
		}
		if first.Level() != test.expectedFirst {
			t.Errorf("%s: TSTA level is %s, want %s", test.name, first.Level(), test.expectedFirst)
		}
		if second.Level() != test.expectedSec {
			t.Errorf("%s: TSTB level is %s, want %s", test.name, second.Level(), test.expectedSec)
		}
	}
}

func TestRegisterSubSystemReturnsSameLogger(t *testing.T) {
	if RegisterSubSystem("TSTC") != RegisterSubSystem("TSTC") {
		t.Fatalf("TestRegisterSubSystemReturnsSameLogger: got two loggers for one tag")
	}
}

func TestLevelFromString(t *testing.T) {
	level, ok := LevelFromString("WRN")
	if !ok || level != LevelWarn {
		t.Fatalf("TestLevelFromString: got (%s, %t), want (WRN, true)", level, ok)
	}
	level, ok = LevelFromString("bogus")
	if ok || level != LevelInfo {
		t.Fatalf("TestLevelFromString: got (%s, %t), want (INF, false)", level, ok)
	}
}
