package indicators

// CrossUp reports whether series A crossed above series B between the
// previous and current values.
func CrossUp(prevA, a, prevB, b float64) bool {
	return prevA < prevB && a > b
}

// CrossDown reports whether series A crossed below series B between the
// previous and current values.
func CrossDown(prevA, a, prevB, b float64) bool {
	return prevA > prevB && a < b
}
