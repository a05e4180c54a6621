package measure

import "fmt"

// Func enumerates the supported aggregation functions.
type Func uint8

const (
	// FuncSum sums the non-missing values; native numeric type.
	FuncSum Func = iota + 1
	// FuncCount counts selected row positions regardless of missingness.
	FuncCount
	// FuncMean averages the non-missing values; always float.
	FuncMean
	// FuncMin returns the smallest non-missing value; native type.
	FuncMin
	// FuncMax returns the largest non-missing value; native type.
	FuncMax
	// FuncMedian returns the interpolated median; always float.
	FuncMedian
	// FuncStd returns the population standard deviation; always float.
	FuncStd
	// FuncVar returns the population variance; always float.
	FuncVar
	// FuncNUnique counts distinct non-missing values; always int.
	FuncNUnique
)

// String returns the stable lowercase name of the function.
func (f Func) String() string {
	switch f {
	case FuncSum:
		return "sum"
	case FuncCount:
		return "count"
	case FuncMean:
		return "mean"
	case FuncMin:
		return "min"
	case FuncMax:
		return "max"
	case FuncMedian:
		return "median"
	case FuncStd:
		return "std"
	case FuncVar:
		return "var"
	case FuncNUnique:
		return "nunique"
	default:
		return "invalid"
	}
}

// ParseFunc resolves a function by its stable name.
func ParseFunc(name string) (Func, error) {
	switch name {
	case "sum":
		return FuncSum, nil
	case "count":
		return FuncCount, nil
	case "mean":
		return FuncMean, nil
	case "min":
		return FuncMin, nil
	case "max":
		return FuncMax, nil
	case "median":
		return FuncMedian, nil
	case "std":
		return FuncStd, nil
	case "var":
		return FuncVar, nil
	case "nunique":
		return FuncNUnique, nil
	default:
		return 0, fmt.Errorf("unknown aggregation function %q", name)
	}
}
