package model

import "fmt"

// Kind is the outcome of processing a single URL.
// Exactly one Kind is assigned to every URL in a run.
type Kind int

const (
	// KindSaved means the image was novel and written to disk.
	KindSaved Kind = iota

	// KindNotImage is a policy skip: the Content-Type did not mention "image".
	KindNotImage

	// KindDuplicate is a policy skip: the content digest was already seen in this run.
	KindDuplicate

	// KindNetworkError covers request construction, DNS, connection, timeout,
	// non-2xx status and oversized body failures.
	KindNetworkError

	// KindSaveError means the image could not be written to disk.
	KindSaveError

	// KindDisallowed is a policy skip: robots.txt disallows the URL.
	// It only occurs when robots checking is enabled.
	KindDisallowed
)

// Kinds returns every Kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindSaved, KindNotImage, KindDuplicate, KindNetworkError, KindSaveError, KindDisallowed}
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSaved:
		return "saved"
	case KindNotImage:
		return "not_image"
	case KindDuplicate:
		return "duplicate"
	case KindNetworkError:
		return "network_error"
	case KindSaveError:
		return "save_error"
	case KindDisallowed:
		return "disallowed"
	default:
		return "unknown"
	}
}

// IsFailure reports whether the kind is an error rather than a success or a policy skip.
func (k Kind) IsFailure() bool {
	return k == KindNetworkError || k == KindSaveError
}

// IsSkip reports whether the kind is a policy skip.
func (k Kind) IsSkip() bool {
	return k == KindNotImage || k == KindDuplicate || k == KindDisallowed
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts a name produced by Kind.String back into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown result kind %q", s)
}
