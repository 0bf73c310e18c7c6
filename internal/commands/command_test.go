package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/taskpulse/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent tomorrow", TypeAdd},
		{"done 3f2a", TypeDone},
		{"rm 3f2a", TypeRemove},
		{"show pending !important", TypeShow},
		{"export backup.json", TypeExport},
		{"/import backup.json", TypeImport},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddPriorityFlag(t *testing.T) {
	cmd, err := Parse("/add water the plants !daily")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Text != "water the plants" {
		t.Fatalf("unexpected text: %q", cmd.Add.Text)
	}
	if cmd.Add.Priority != model.PriorityDaily {
		t.Fatalf("unexpected priority: %s", cmd.Add.Priority)
	}
}

func TestParseAddDefaultsToGeneral(t *testing.T) {
	cmd, err := Parse("add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Priority != model.PriorityGeneral {
		t.Fatalf("unexpected priority: %s", cmd.Add.Priority)
	}
}

func TestParseAddRejectsUnknownFlag(t *testing.T) {
	_, err := Parse("add do a thing !urgent")
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}

func TestParseAddRequiresText(t *testing.T) {
	_, err := Parse("add !daily")
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}

func TestParseShowSubjects(t *testing.T) {
	cmd, err := Parse("show completed")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Show.Subject != "completed" {
		t.Fatalf("unexpected subject: %q", cmd.Show.Subject)
	}

	_, err = Parse("show everything")
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
		t.Fatalf("expected invalid argument error, got %v", err)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "/", "/  "} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs !secondary")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Text != "write docs" {
				t.Fatalf("unexpected text: %q", a.Text)
			}
			if a.Priority != model.PrioritySecondary {
				t.Fatalf("unexpected priority: %s", a.Priority)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("show tasks")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
