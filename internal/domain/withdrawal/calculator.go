package withdrawal

import (
	"math"
	"strconv"
	"strings"
)

// Tablas de referencia regulatorias.
// drugName y species se normalizan a lowercase antes del lookup;
// lo que no esté en tabla cae al default conservador.
const (
	DefaultBaseDays      = 28
	DefaultSpeciesFactor = 1.0

	// Piso duro: nunca devolvemos menos de 3 días,
	// un error de cálculo jamás puede acortar el retiro.
	MinDays = 3
)

var baseDays = map[string]int{
	"amoxicillin":     14,
	"oxytetracycline": 21,
	"florfenicol":     28,
	"tulathromycin":   35,
	"ceftiofur":       10,
	"enrofloxacin":    15,
}

var speciesFactor = map[string]float64{
	"cattle":  1.0,
	"sheep":   0.8,
	"goat":    0.9,
	"pig":     0.7,
	"poultry": 0.5,
}

// ComputeDays calcula el período de retiro en días para una administración.
// Nunca falla: inputs desconocidos o dosage no parseable degradan a defaults
// (documentados arriba), siempre hacia el lado conservador.
//
//	days = max(3, round(base * speciesFactor * clamp(mag/5, 0.5, 2.0)))
func ComputeDays(drugName, dosageText, species string) int {
	base := DefaultBaseDays
	if d, ok := baseDays[strings.ToLower(strings.TrimSpace(drugName))]; ok {
		base = d
	}

	factor := DefaultSpeciesFactor
	if f, ok := speciesFactor[strings.ToLower(strings.TrimSpace(species))]; ok {
		factor = f
	}

	// Magnitudes de 1 o menos quedan neutras (factor 1.0): una dosis mínima
	// o un texto sin número jamás acorta el retiro por debajo de la base.
	mag := dosageMagnitude(dosageText)
	dosageFactor := 1.0
	if mag > 1 {
		dosageFactor = clamp(mag/5, 0.5, 2.0)
	}

	raw := int(math.Round(float64(base) * factor * dosageFactor))
	if raw < MinDays {
		return MinDays
	}
	return raw
}

// dosageMagnitude extrae el primer token numérico (entero o decimal)
// de un texto libre tipo "5mg/kg". Si no hay número, devuelve 1.
func dosageMagnitude(dosageText string) float64 {
	s := dosageText
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			start = i
			break
		}
	}
	if start == -1 {
		return 1
	}

	end := start
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}

	// "5." parsea igual; strconv lo acepta como 5.
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[start:end], "."), 64)
	if err != nil {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
