// Package numwords spells whole amounts in Spanish for receipts and contracts.
package numwords

import "strings"

var units = [...]string{
	"", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve",
	"diez", "once", "doce", "trece", "catorce", "quince", "dieciséis", "diecisiete", "dieciocho", "diecinueve",
	"veinte", "veintiuno", "veintidós", "veintitrés", "veinticuatro", "veinticinco", "veintiséis", "veintisiete", "veintiocho", "veintinueve",
}

var tens = [...]string{"", "", "", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa"}

var hundreds = [...]string{
	"", "ciento", "doscientos", "trescientos", "cuatrocientos",
	"quinientos", "seiscientos", "setecientos", "ochocientos", "novecientos",
}

const (
	thousand = uint64(1000)
	million  = uint64(1000000)
	trillion = million * million
)

// Words spells n, e.g. 1066185 -> "un millón sesenta y seis mil ciento ochenta y cinco".
func Words(n int64) string {
	if n == 0 {
		return "cero"
	}
	if n < 0 {
		// Computed in uint64 so math.MinInt64 has a magnitude.
		return "menos " + words(uint64(-(n+1))+1)
	}
	return words(uint64(n))
}

// Guaranies spells an amount followed by the currency name.
func Guaranies(n int64) string {
	w := apocope(Words(n))
	switch {
	case n == 1:
		return w + " guaraní"
	case strings.HasSuffix(w, "millón"), strings.HasSuffix(w, "millones"),
		strings.HasSuffix(w, "billón"), strings.HasSuffix(w, "billones"):
		return w + " de guaraníes"
	default:
		return w + " guaraníes"
	}
}

func words(n uint64) string {
	var head string
	var rest uint64

	switch {
	case n >= trillion:
		head, rest = scaled(n/trillion, "un billón", "billones"), n%trillion
	case n >= million:
		head, rest = scaled(n/million, "un millón", "millones"), n%million
	case n >= thousand:
		if n/thousand == 1 {
			head = "mil"
		} else {
			head = apocope(words(n/thousand)) + " mil"
		}
		rest = n % thousand
	default:
		return belowThousand(int(n))
	}

	if rest == 0 {
		return head
	}
	return head + " " + words(rest)
}

func scaled(count uint64, one, many string) string {
	if count == 1 {
		return one
	}
	return apocope(words(count)) + " " + many
}

func belowThousand(n int) string {
	if n == 100 {
		return "cien"
	}
	var parts []string
	if h := n / 100; h > 0 {
		parts = append(parts, hundreds[h])
	}
	if r := n % 100; r > 0 {
		parts = append(parts, belowHundred(r))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int) string {
	if n < len(units) {
		return units[n]
	}
	t, u := n/10, n%10
	if u == 0 {
		return tens[t]
	}
	return tens[t] + " y " + units[u]
}

// apocope shortens a trailing "uno" before a noun: "veintiuno" -> "veintiún".
func apocope(s string) string {
	switch {
	case strings.HasSuffix(s, "veintiuno"):
		return strings.TrimSuffix(s, "veintiuno") + "veintiún"
	case strings.HasSuffix(s, "uno"):
		return strings.TrimSuffix(s, "uno") + "un"
	}
	return s
}
