// Package utils provides small string helpers shared by the gateway and the
// correction checker, such as title casing and ZIP code splitting.
package utils
