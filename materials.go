package stagesizer

import (
	"fmt"
	"sort"
	"strings"
)

// Propellant defines a storable or cryogenic propellant.
type Propellant struct {
	Name    string  `json:"name"`
	Density float64 `json:"density"` // kg/m^3 at storage conditions
}

// Material defines a tank wall material.
type Material struct {
	Name             string  `json:"name"`
	Density          float64 `json:"density"`           // kg/m^3
	UltimateStrength float64 `json:"ultimate_strength"` // MPa
}

/* Definitions */

var propellants = map[string]Propellant{
	"hydrazine": {"Hydrazine", 1008.3},
	"n2h4":      {"Hydrazine", 1008.3},
	"mmh":       {"MMH", 874},
	"udmh":      {"UDMH", 791},
	"nto":       {"NTO", 1443},
	"n2o4":      {"NTO", 1443},
	"mon-3":     {"MON-3", 1440},
	"lox":       {"LOX", 1141},
	"rp-1":      {"RP-1", 810},
	"lh2":       {"LH2", 70.8},
	"htp":       {"HTP", 1431},
}

var materials = map[string]Material{
	"ti-6al-4v":   {"Ti-6Al-4V", 4430, 900},
	"ti64":        {"Ti-6Al-4V", 4430, 900},
	"al-2219-t87": {"Al 2219-T87", 2840, 455},
	"al-6061-t6":  {"Al 6061-T6", 2700, 310},
	"inconel-718": {"Inconel 718", 8190, 1375},
	"ss-304":      {"SS 304", 8000, 505},
}

func catalogKey(name string) string {
	return strings.Replace(strings.ToLower(strings.TrimSpace(name)), " ", "-", -1)
}

// PropellantFromString returns the propellant from its name (case insensitive).
func PropellantFromString(name string) (Propellant, error) {
	if p, found := propellants[catalogKey(name)]; found {
		return p, nil
	}
	return Propellant{}, fmt.Errorf("undefined propellant '%s'", name)
}

// MaterialFromString returns the tank material from its name (case insensitive, spaces or dashes).
func MaterialFromString(name string) (Material, error) {
	if m, found := materials[catalogKey(name)]; found {
		return m, nil
	}
	return Material{}, fmt.Errorf("undefined material '%s'", name)
}

// Propellants returns every propellant of the catalog, sorted by name.
func Propellants() []Propellant {
	seen := map[string]bool{}
	list := []Propellant{}
	for _, p := range propellants {
		if !seen[p.Name] {
			seen[p.Name] = true
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Materials returns every material of the catalog, sorted by name.
func Materials() []Material {
	seen := map[string]bool{}
	list := []Material{}
	for _, m := range materials {
		if !seen[m.Name] {
			seen[m.Name] = true
			list = append(list, m)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// ApplyMaterial sets the wall density and ultimate strength.
func (in *Inputs) ApplyMaterial(m Material) {
	in.WallDensity = m.Density
	in.WallSUlt = m.UltimateStrength
}
