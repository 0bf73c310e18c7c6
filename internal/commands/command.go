package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/taskpulse/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeRemove Type = "rm"
	TypeShow   Type = "show"
	TypeExport Type = "export"
	TypeImport Type = "import"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Text     string
	Priority model.Priority
}

type DoneArgs struct {
	Target string
}

type RemoveArgs struct {
	Target string
}

type ShowArgs struct {
	Subject  string
	Priority model.Priority
}

type ExportArgs struct {
	Path string
}

type ImportArgs struct {
	Path string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Done   *DoneArgs
	Remove *RemoveArgs
	Show   *ShowArgs
	Export *ExportArgs
	Import *ImportArgs
}

// Parse turns a palette line like "/add water plants !daily" into a typed
// command. The leading slash is optional.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone:
		return parseTarget(input, TypeDone, args)
	case TypeRemove:
		return parseTarget(input, TypeRemove, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// priorityFlag maps "!important" style tokens to a priority. ok is false
// when the token is not a flag at all.
func priorityFlag(token string) (model.Priority, bool, error) {
	if !strings.HasPrefix(token, "!") {
		return "", false, nil
	}
	name := strings.TrimPrefix(token, "!")
	for _, p := range model.Priorities() {
		if strings.EqualFold(name, string(p)) {
			return p, true, nil
		}
	}
	return "", true, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown priority flag: %s", token)}
}

func parseAdd(raw string, args []string) (Command, error) {
	priority := model.PriorityGeneral
	words := make([]string, 0, len(args))
	for _, arg := range args {
		p, isFlag, err := priorityFlag(arg)
		if err != nil {
			return Command{}, err
		}
		if isFlag {
			priority = p
			continue
		}
		words = append(words, arg)
	}
	text := strings.TrimSpace(strings.Join(words, " "))
	if text == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text, Priority: priority}}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires a task id", typ)}
	}
	target := strings.TrimSpace(args[0])
	if typ == TypeDone {
		return Command{Type: typ, Raw: raw, Done: &DoneArgs{Target: target}}, nil
	}
	return Command{Type: typ, Raw: raw, Remove: &RemoveArgs{Target: target}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject: tasks, pending, completed or stats"}
	}
	subject := strings.ToLower(args[0])
	switch subject {
	case "tasks", "pending", "completed", "stats":
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown show subject: %s", subject)}
	}

	var priority model.Priority
	for _, arg := range args[1:] {
		p, isFlag, err := priorityFlag(arg)
		if err != nil {
			return Command{}, err
		}
		if isFlag {
			priority = p
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject, Priority: priority}}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	path := ""
	if len(args) > 0 {
		path = strings.Join(args, " ")
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: path}}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: strings.Join(args, " ")}}, nil
}
