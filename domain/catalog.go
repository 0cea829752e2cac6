package domain

// DefaultProducts is the fallback product catalog used when the products
// table is empty or unreachable.
func DefaultProducts() []string {
	return []string{
		"currency_exchange",
		"investments",
		"factoring",
		"leasing",
		"pos_terminal",
		"pos_credit",
		"credit",
	}
}

// Referrers is the fixed catalog of referral-source names.
func Referrers() []string {
	return []string{
		"Andrea", "Angel", "Angie", "Ariadna", "Cesar", "Cornelio", "Eduardo",
		"Gilberto", "Jorge", "Karen", "Lupita", "Mafer", "Marco", "Paco",
		"Pepe", "Ricardo", "Vania", "Ximena", "Integra",
	}
}
