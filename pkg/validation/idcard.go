package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var idCardPattern = regexp.MustCompile(`^[1-9]\d{5}(19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[\dXx]$`)

var (
	idCardWeights = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}
	idCardChecks  = [11]byte{'1', '0', 'X', '9', '8', '7', '6', '5', '4', '3', '2'}
)

// ValidIDCard checks an 18-character mainland resident identity number: its
// structure, that the embedded birth date exists, and the ISO 7064 check
// character. A trailing x is accepted in either case.
func ValidIDCard(id string) bool {
	id = strings.TrimSpace(id)
	if !idCardPattern.MatchString(id) {
		return false
	}

	year, _ := strconv.Atoi(id[6:10])
	month, _ := strconv.Atoi(id[10:12])
	day, _ := strconv.Atoi(id[12:14])
	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if birth.Year() != year || int(birth.Month()) != month || birth.Day() != day {
		return false
	}

	sum := 0
	for idx, weight := range idCardWeights {
		sum += int(id[idx]-'0') * weight
	}
	want := idCardChecks[sum%11]
	got := id[17]
	if got == 'x' {
		got = 'X'
	}
	return got == want
}
