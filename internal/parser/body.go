package parser

import "strings"

// Validator reports whether the text following a keyword is an acceptable
// argument for it.
type Validator func(arg string) bool

// ParseBody splits a command body into a name and keyword arguments. Tokens
// are scanned from the right: a keyword takes the text to its right when it
// has not been used yet and its validator accepts that text. The first
// keyword that is repeated or rejected ends the scan, and everything to its
// left, the keyword included, is the name.
func ParseBody(body string, keywords map[string]Validator) (string, map[string]string) {
	tokens := strings.Fields(body)
	args := make(map[string]string)
	end := len(tokens)
	for i := len(tokens) - 1; i >= 0; i-- {
		kw := strings.ToLower(tokens[i])
		valid, ok := keywords[kw]
		if !ok {
			continue
		}
		arg := strings.Join(tokens[i+1:end], " ")
		if _, used := args[kw]; used || !valid(arg) {
			break
		}
		args[kw] = arg
		end = i
	}
	return strings.Join(tokens[:end], " "), args
}
