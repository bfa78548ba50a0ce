package commands

import (
	"fmt"
	"strings"

	e "sobel/pkg/errors"
)

// parsedArgs holds the flags and positional arguments of a command.
type parsedArgs struct {
	values     map[string]string
	bools      map[string]bool
	positional []string
}

// parseArgs splits args into flags and positionals. valueFlags take a value
// either as "--flag value" or "--flag=value"; boolFlags take none. Anything
// after "--" is positional. Errors carry usage as their suggestion.
func parseArgs(args []string, valueFlags, boolFlags []string, usage string) (parsedArgs, error) {
	p := parsedArgs{values: map[string]string{}, bools: map[string]bool{}}
	isValue := toSet(valueFlags)
	isBool := toSet(boolFlags)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			p.positional = append(p.positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			p.positional = append(p.positional, a)
			continue
		}
		name, value, hasValue := strings.Cut(a, "=")
		switch {
		case isBool[name]:
			if hasValue {
				return p, usageError(fmt.Sprintf("flag %s does not take a value", name)).WithSuggestion(usage)
			}
			p.bools[name] = true
		case isValue[name]:
			if !hasValue {
				if i+1 >= len(args) {
					return p, usageError(fmt.Sprintf("flag %s requires a value", name)).WithSuggestion(usage)
				}
				i++
				value = args[i]
			}
			p.values[name] = value
		default:
			return p, usageError(fmt.Sprintf("unknown flag: %s", a)).WithSuggestion(usage)
		}
	}
	return p, nil
}

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func usageError(msg string) *e.SobelError {
	return e.New(e.ErrInvalidArgs, msg)
}
