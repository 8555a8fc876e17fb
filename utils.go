/* utils.go
 * Utility functions used across the application
 */

package main

import (
	"fmt"
	"strings"
)

// parseBool converts a yes/no style string into a boolean for environment driven flags
// Preconditions: Receives string containing true/false, 1/0 or yes/no (case insensitive)
// Postconditions: Returns boolean value or an error if the string is not recognised
func parseBool(str string) (bool, error) {
	str = strings.TrimSpace(str)
	str = strings.ToLower(str)

	switch str {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean string %q", str)
}
