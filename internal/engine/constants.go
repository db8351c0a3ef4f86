package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ArrheniusConstants parameterise the dual-Arrhenius temperature factor.
type ArrheniusConstants struct {
	A   float64 `yaml:"a"`
	Ea1 float64 `yaml:"ea1"`
	Ea2 float64 `yaml:"ea2"`
}

// SN29500Constants holds the tables the SN29500 calculator reads.
type SN29500Constants struct {
	Arrhenius        ArrheniusConstants `yaml:"arrhenius"`
	ReferenceTemp    float64            `yaml:"reference_temp"`
	VariantTemp      float64            `yaml:"variant_temp"`
	CapacitorBaseFIT float64            `yaml:"capacitor_base_fit"`
	ICBaseFIT        float64            `yaml:"ic_base_fit"`
	// BaseLambda maps a component type to the conservative FIT used when the type has no
	// dedicated formula. Keys are matched case-insensitively.
	BaseLambda    map[string]float64 `yaml:"base_lambda"`
	DefaultLambda float64            `yaml:"default_lambda"`
}

// IECFactors are the product terms of an IEC 62380 per-type failure rate.
type IECFactors struct {
	C1  float64 `yaml:"c1"`
	PiT float64 `yaml:"pi_t"`
	PiU float64 `yaml:"pi_u"`
}

// Lambda is the product of the factors in FIT.
func (f IECFactors) Lambda() float64 {
	return f.C1 * f.PiT * f.PiU
}

// IEC62380Constants holds per-type factors. Keys are matched case-insensitively.
type IEC62380Constants struct {
	Types map[string]IECFactors `yaml:"types"`
}

// Constants is the full pack of standard constants. Values are placeholders until
// replaced with qualified figures through a constants file.
type Constants struct {
	SN29500  SN29500Constants  `yaml:"sn29500"`
	IEC62380 IEC62380Constants `yaml:"iec62380"`
}

// DefaultConstants returns a fresh copy of the built-in constants.
func DefaultConstants() Constants {
	return Constants{
		SN29500: SN29500Constants{
			Arrhenius:        ArrheniusConstants{A: 0.873, Ea1: 0.16, Ea2: 0.44},
			ReferenceTemp:    40,
			VariantTemp:      40,
			CapacitorBaseFIT: 0.8,
			ICBaseFIT:        5.0,
			BaseLambda: map[string]float64{
				"diode":       2.0,
				"transistor":  3.0,
				"inductor":    0.5,
				"connector":   0.5,
				"crystal":     2.0,
				"optocoupler": 5.0,
				"relay":       10.0,
			},
			DefaultLambda: 1.0,
		},
		IEC62380: IEC62380Constants{
			Types: map[string]IECFactors{
				"resistor":  {C1: 4.0, PiT: 1.2, PiU: 1.1},
				"capacitor": {C1: 3.0, PiT: 1.1, PiU: 1.05},
				"ic":        {C1: 6.0, PiT: 1.3, PiU: 1.2},
			},
		},
	}
}

type constantsFile struct {
	SN29500 *struct {
		Arrhenius        *ArrheniusConstants `yaml:"arrhenius"`
		ReferenceTemp    *float64            `yaml:"reference_temp"`
		VariantTemp      *float64            `yaml:"variant_temp"`
		CapacitorBaseFIT *float64            `yaml:"capacitor_base_fit"`
		ICBaseFIT        *float64            `yaml:"ic_base_fit"`
		BaseLambda       map[string]float64  `yaml:"base_lambda"`
		DefaultLambda    *float64            `yaml:"default_lambda"`
	} `yaml:"sn29500"`
	IEC62380 *struct {
		Types map[string]IECFactors `yaml:"types"`
	} `yaml:"iec62380"`
}

// LoadConstants overlays the YAML file at path onto DefaultConstants. An empty path or a
// missing file yields the defaults.
func LoadConstants(path string, logger *slog.Logger) (Constants, error) {
	if logger == nil {
		logger = slog.Default()
	}
	constants := DefaultConstants()
	if path == "" {
		return constants, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("constants file not found, using built-in constants", "path", path)
			return constants, nil
		}
		return Constants{}, err
	}

	var file constantsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Constants{}, fmt.Errorf("parse constants %s: %w", path, err)
	}
	if sn := file.SN29500; sn != nil {
		if sn.Arrhenius != nil {
			constants.SN29500.Arrhenius = *sn.Arrhenius
		}
		overlay(&constants.SN29500.ReferenceTemp, sn.ReferenceTemp)
		overlay(&constants.SN29500.VariantTemp, sn.VariantTemp)
		overlay(&constants.SN29500.CapacitorBaseFIT, sn.CapacitorBaseFIT)
		overlay(&constants.SN29500.ICBaseFIT, sn.ICBaseFIT)
		overlay(&constants.SN29500.DefaultLambda, sn.DefaultLambda)
		for k, v := range sn.BaseLambda {
			constants.SN29500.BaseLambda[typeKey(k)] = v
		}
	}
	if iec := file.IEC62380; iec != nil {
		for k, v := range iec.Types {
			constants.IEC62380.Types[typeKey(k)] = v
		}
	}
	if err := constants.Validate(); err != nil {
		return Constants{}, fmt.Errorf("constants %s: %w", path, err)
	}
	logger.Info("loaded standard constants", "path", path,
		"base_lambda_types", len(constants.SN29500.BaseLambda),
		"iec62380_types", len(constants.IEC62380.Types))
	return constants, nil
}

func overlay(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// Validate rejects packs that would produce non-physical results.
func (c Constants) Validate() error {
	a := c.SN29500.Arrhenius
	if !(a.A >= 0 && a.A <= 1) {
		return fmt.Errorf("arrhenius weight a=%v outside [0,1]", a.A)
	}
	if !finite(a.Ea1) || !finite(a.Ea2) {
		return errors.New("arrhenius activation energies must be finite")
	}
	for name, t := range map[string]float64{"reference_temp": c.SN29500.ReferenceTemp, "variant_temp": c.SN29500.VariantTemp} {
		if err := checkTemperature(t); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	rates := map[string]float64{
		"capacitor_base_fit": c.SN29500.CapacitorBaseFIT,
		"ic_base_fit":        c.SN29500.ICBaseFIT,
		"default_lambda":     c.SN29500.DefaultLambda,
	}
	for k, v := range c.SN29500.BaseLambda {
		rates["base_lambda."+k] = v
	}
	for k, f := range c.IEC62380.Types {
		rates["iec62380."+k] = f.Lambda()
	}
	for name, v := range rates {
		if !finite(v) || v < 0 {
			return fmt.Errorf("%s=%v must be a non-negative rate", name, v)
		}
	}
	return nil
}

func typeKey(componentType string) string {
	return strings.ToLower(strings.TrimSpace(componentType))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
