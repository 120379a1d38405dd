package logger

import (
	"testing"

	"go.uber.org/zap"
)

func Test_New_Levels(t *testing.T) {
	cases := []struct {
		env, level string
		debug      bool
	}{
		{"production", "", false},
		{"production", "debug", true},
		{"development", "", true},
		{"development", "warn", false},
		{"development", "loud", true}, // unparsable level keeps the default
	}
	for _, tc := range cases {
		log, err := New(tc.env, tc.level)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.env, tc.level, err)
		}
		if got := log.Core().Enabled(zap.DebugLevel); got != tc.debug {
			t.Fatalf("%s/%s: debug enabled = %v, want %v", tc.env, tc.level, got, tc.debug)
		}
	}
}
