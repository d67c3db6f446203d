package core

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kart-io/unilog/errors"
)

// Formatted is a template rendered against its positional arguments.
type Formatted struct {
	Message string
	Args    []any
	Cause   error
}

// SplitCause detaches a trailing error argument. The returned slice never aliases
// a modified copy of args; it is args resliced.
func SplitCause(args []any) ([]any, error) {
	if len(args) == 0 {
		return args, nil
	}
	if err, ok := args[len(args)-1].(error); ok && err != nil {
		return args[:len(args)-1], err
	}
	return args, nil
}

// Format renders template with printf-style positional arguments. A trailing
// error argument becomes the cause and takes no part in formatting. Without
// remaining arguments the template is used verbatim. Surplus arguments are
// ignored; any other operand mismatch is reported as a FormattingFailure.
func Format(template string, args ...any) (Formatted, error) {
	args, cause := SplitCause(args)
	out := Formatted{Message: template, Args: args, Cause: cause}
	if len(args) == 0 {
		return out, nil
	}

	s := scanTemplate(template, args)
	if s.problem == "" {
		for _, d := range s.directives {
			if mismatched(d.verb, args[d.arg]) {
				s.problem = fmt.Sprintf("%%%c cannot format operand %d of type %T", d.verb, d.arg+1, args[d.arg])
				break
			}
		}
	}
	if s.problem != "" {
		return out, errors.NewError(errors.FormattingFailure, "format",
			fmt.Sprintf("template %q does not match %d argument(s): %s", template, len(args), s.problem), nil)
	}

	operands := args
	if !s.reordered {
		operands = args[:s.consumed]
	}
	out.Message = fmt.Sprintf(template, operands...)
	return out, nil
}

// directive is one verb of a template and the operand it formats.
type directive struct {
	verb rune
	arg  int
}

// scanned is what a template asks of its operands.
type scanned struct {
	directives []directive
	consumed   int
	reordered  bool
	problem    string
}

// scanTemplate walks template the way fmt does, recording which operand every
// verb, width and precision consumes without rendering any of them.
func scanTemplate(format string, args []any) scanned {
	var s scanned
	n := len(args)
	end := len(format)
	argNum := 0

	for i := 0; i < end; {
		for i < end && format[i] != '%' {
			i++
		}
		if i >= end {
			break
		}
		i++

	flags:
		for ; i < end; i++ {
			switch format[i] {
			case '#', '0', '+', '-', ' ':
			default:
				break flags
			}
		}

		good := true
		var afterIndex bool
		argNum, i, afterIndex = s.argNumber(format, i, argNum, n, &good)

		if i < end && format[i] == '*' {
			i++
			if !intOperand(args, argNum) {
				s.problem = "width operand is not an int"
				return s
			}
			argNum++
			afterIndex = false
		} else {
			start := i
			i = skipDigits(format, i)
			if afterIndex && i > start {
				good = false
			}
		}

		if i+1 < end && format[i] == '.' {
			i++
			if afterIndex {
				good = false
			}
			argNum, i, afterIndex = s.argNumber(format, i, argNum, n, &good)
			if i < end && format[i] == '*' {
				i++
				if !intOperand(args, argNum) {
					s.problem = "precision operand is not an int"
					return s
				}
				argNum++
				afterIndex = false
			} else {
				i = skipDigits(format, i)
			}
		}

		if !afterIndex {
			argNum, i, _ = s.argNumber(format, i, argNum, n, &good)
		}

		if i >= end {
			s.problem = "missing verb at end of template"
			return s
		}
		verb, size := utf8.DecodeRuneInString(format[i:])
		i += size

		switch {
		case verb == '%':
		case !good:
			s.problem = "bad operand index"
			return s
		case argNum >= n:
			s.problem = fmt.Sprintf("missing operand for %%%c", verb)
			return s
		default:
			s.directives = append(s.directives, directive{verb: verb, arg: argNum})
			argNum++
		}
	}

	s.consumed = argNum
	return s
}

// argNumber parses an explicit "[n]" operand index at format[i].
func (s *scanned) argNumber(format string, i, argNum, n int, good *bool) (int, int, bool) {
	if i >= len(format) || format[i] != '[' {
		return argNum, i, false
	}
	s.reordered = true
	if len(format[i:]) < 3 {
		*good = false
		return argNum, i + 1, false
	}
	for j := i + 1; j < len(format); j++ {
		if format[j] != ']' {
			continue
		}
		k := skipDigits(format, i+1)
		if k != j || k == i+1 {
			*good = false
			return argNum, j + 1, false
		}
		index, err := strconv.Atoi(format[i+1 : j])
		if err != nil || index < 1 || index > n {
			*good = false
			return argNum, j + 1, true
		}
		return index - 1, j + 1, true
	}
	*good = false
	return argNum, i + 1, false
}

func skipDigits(format string, i int) int {
	for i < len(format) && '0' <= format[i] && format[i] <= '9' {
		i++
	}
	return i
}

// intOperand reports whether args[i] can serve as a '*' width or precision.
func intOperand(args []any, i int) bool {
	if i >= len(args) {
		return false
	}
	switch reflect.ValueOf(args[i]).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

// mismatched reports whether fmt rejects verb for arg. The check renders the
// single operand on its own, so marker-like text inside other operands or the
// template cannot influence it.
func mismatched(verb rune, arg any) bool {
	switch {
	case verb == 'w':
		// only fmt.Errorf understands %w
		return true
	case verb == 'v', arg == nil:
		return false
	}
	if _, ok := arg.(fmt.Formatter); ok {
		return false
	}
	if stringLike(arg) && strings.ContainsRune("sqxX", verb) {
		return false
	}
	bad := "%!" + string(verb) + "(" + reflect.TypeOf(arg).String() + "="
	return strings.HasPrefix(fmt.Sprintf("%"+string(verb), arg), bad)
}

func stringLike(arg any) bool {
	switch arg.(type) {
	case string, []byte, error, fmt.Stringer:
		return true
	}
	return reflect.ValueOf(arg).Kind() == reflect.String
}
