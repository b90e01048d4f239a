package entities

// IsValidCPF reports whether raw is a valid Brazilian CPF.
//
// Accepts formatted ("529.982.247-25") or raw ("52998224725") input: all
// non-digit characters are stripped before checking. An 11-digit sequence of a
// single repeated digit is rejected even though its check digits match.
func IsValidCPF(raw string) bool {
	digits := make([]int, 0, 11)
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != 11 {
		return false
	}

	repeated := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	if checkDigit(digits[:9], 10) != digits[9] {
		return false
	}
	return checkDigit(digits[:10], 11) == digits[10]
}

// checkDigit computes a CPF verification digit over the given positions,
// weighting the first position with firstWeight and decreasing by one.
func checkDigit(digits []int, firstWeight int) int {
	sum := 0
	for i, d := range digits {
		sum += d * (firstWeight - i)
	}
	d := 11 - sum%11
	if d == 10 || d == 11 {
		return 0
	}
	return d
}
