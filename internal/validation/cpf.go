package validation

// ValidCPF verifies a Brazilian CPF: punctuation is ignored, the value must
// hold exactly 11 digits, repeated-digit sequences are rejected, and both
// check digits must match the modulo-11 checksum.
func ValidCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '.' || r == '-' || r == ' ':
			// formatting characters are allowed anywhere
		default:
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}

	same := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			same = false
			break
		}
	}
	if same {
		return false
	}

	if digits[9] != cpfCheckDigit(digits[:9], 10) {
		return false
	}
	return digits[10] == cpfCheckDigit(digits[:10], 11)
}

func cpfCheckDigit(digits []int, weight int) int {
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	rest := sum * 10 % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}
