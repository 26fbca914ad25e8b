package service

import (
	"NeoSync/internal/config"
	"NeoSync/internal/model"
)

// DaySummary 单日汇总统计
type DaySummary struct {
	Count    int
	Smallest float64
	Largest  float64
}

// Summarize count 为当日条目数；smallest/largest 只在有直径值的条目中取，全部缺失时均为 0
func Summarize(items []model.NeoObject, field string) DaySummary {
	out := DaySummary{Count: len(items)}
	seen := false
	for i := range items {
		v := diameterOf(&items[i], field)
		if !v.Valid {
			continue
		}
		if !seen {
			out.Smallest, out.Largest = v.Value, v.Value
			seen = true
			continue
		}
		if v.Value < out.Smallest {
			out.Smallest = v.Value
		}
		if v.Value > out.Largest {
			out.Largest = v.Value
		}
	}
	return out
}

func diameterOf(o *model.NeoObject, field string) model.FlexFloat {
	if field == config.DiameterFieldMin {
		return o.EstimatedDiameter.Kilometers.EstimatedDiameterMin
	}
	return o.EstimatedDiameter.Kilometers.EstimatedDiameterMax
}
