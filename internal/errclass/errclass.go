// Package errclass turns commerce backend failures into stable, user-facing
// categories with one message template each.
package errclass

import (
	"errors"
	"fmt"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider"
)

// DefaultDocsURL is the troubleshooting page the messages point at
const DefaultDocsURL = "https://github.com/amplience/dc-extension-ecomm-toolkit/blob/main/docs/errors.md"

// Category is the user-facing class of a provider failure
type Category int

const (
	Unknown Category = iota
	Cors
	NotAuthenticated
	AuthError
	AuthUnreachable
	APIError
	APIGraphQL
	NotSupported
)

// Categories lists every category
func Categories() []Category {
	return []Category{Unknown, Cors, NotAuthenticated, AuthError, AuthUnreachable, APIError, APIGraphQL, NotSupported}
}

func (c Category) String() string {
	switch c {
	case Cors:
		return "Cors"
	case NotAuthenticated:
		return "NotAuthenticated"
	case AuthError:
		return "AuthError"
	case AuthUnreachable:
		return "AuthUnreachable"
	case APIError:
		return "ApiError"
	case APIGraphQL:
		return "ApiGraphQL"
	case NotSupported:
		return "NotSupported"
	default:
		return "Unknown"
	}
}

// CategoryOf maps a backend code to its category. Every code maps to exactly
// one category; codes this package does not know are Unknown.
func CategoryOf(code provider.Code) Category {
	switch code {
	case provider.CodeCors:
		return Cors
	case provider.CodeNotAuthenticated:
		return NotAuthenticated
	case provider.CodeAuthError:
		return AuthError
	case provider.CodeAuthUnreachable:
		return AuthUnreachable
	case provider.CodeAPIError:
		return APIError
	case provider.CodeAPIGraphQL:
		return APIGraphQL
	case provider.CodeNotSupported:
		return NotSupported
	default:
		return Unknown
	}
}

// Classified is the user-facing form of a provider failure
type Classified struct {
	Category Category
	Code     provider.Code // empty when the error carried no code
	Message  string
	Err      error
}

func (c *Classified) Error() string {
	if c == nil {
		return "<nil>"
	}
	return c.Message
}

func (c *Classified) Unwrap() error {
	if c == nil {
		return nil
	}
	return c.Err
}

// Classifier renders classified messages
type Classifier struct {
	DocsURL string
	Origin  string // the host origin a backend must allow for CORS
}

// New creates a classifier pointing at the default docs page
func New(origin string) Classifier {
	return Classifier{DocsURL: DefaultDocsURL, Origin: origin}
}

// Classify maps err to exactly one category and renders its message with the
// original error text appended. An already classified error is returned as is.
func (c Classifier) Classify(err error) *Classified {
	if err == nil {
		return nil
	}
	var done *Classified
	if errors.As(err, &done) {
		return done
	}

	code, hasCode := provider.CodeOf(err)
	category := CategoryOf(code)
	raw := rawMessage(err)

	return &Classified{
		Category: category,
		Code:     code,
		Message:  c.render(category, code, hasCode, raw),
		Err:      err,
	}
}

func (c Classifier) render(category Category, code provider.Code, hasCode bool, raw string) string {
	docs := c.DocsURL
	if docs == "" {
		docs = DefaultDocsURL
	}
	origin := c.Origin
	if origin == "" {
		origin = "this host"
	}

	switch category {
	case Cors:
		return fmt.Sprintf("Cross-Origin Request Blocked. Make sure that you have properly configured your vendor to accept requests from %s.\n\nSee %s#cors for more information.\n\n%s", origin, docs, raw)
	case NotAuthenticated:
		return fmt.Sprintf("Not authenticated, make sure your authentication params are properly configured.\n\nSee %s#authentication-error for more information.\n\n%s", docs, raw)
	case AuthError:
		return fmt.Sprintf("Authentication error, make sure your authentication params are properly configured.\n\nSee %s#authentication-error for more information.\n\n%s", docs, raw)
	case AuthUnreachable:
		return fmt.Sprintf("Authentication server unreachable, make sure your authentication params are properly configured.\n\nSee %s#authentication-error for more information.\n\n%s", docs, raw)
	case APIError:
		return fmt.Sprintf("API Error, make sure your params are properly configured.\n\nSee %s#api-error for more information.\n\n%s", docs, raw)
	case APIGraphQL:
		return fmt.Sprintf("API GraphQL Error, make sure your params are properly configured.\n\nSee %s#api-error for more information.\n\n%s", docs, raw)
	case NotSupported:
		return fmt.Sprintf("Method not supported by vendor.\n\nSee %s#not-supported for more information.\n\n%s", docs, raw)
	case Unknown:
		if !hasCode {
			return raw
		}
		return fmt.Sprintf("Encountered error '%s'. See %s#other for more information.\n\n%s", code, docs, raw)
	}
	panic(fmt.Sprintf("errclass: unhandled category %d", int(category)))
}

// rawMessage prefers the backend's own message over the wrapped chain
func rawMessage(err error) string {
	var pe *provider.Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return err.Error()
}
