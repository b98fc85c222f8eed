package reporting

import (
	"fmt"
	"strings"
)

// RenderEquityCSV renders the equity curve as CSV.
func RenderEquityCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("date,portfolio_value,long_exposure,short_exposure,gross_exposure,net_exposure,long_short_ratio\n")
	for _, p := range r.Curve {
		ratio := ""
		if p.LongShortRatio != nil {
			ratio = fmt.Sprintf("%.6f", *p.LongShortRatio)
		}
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f,%.6f,%.6f,%s\n",
			p.Date.Format("2006-01-02"),
			p.PortfolioValue,
			p.LongExposure, p.ShortExposure,
			p.GrossExposure, p.NetExposure,
			ratio))
	}

	return sb.String()
}

// RenderExecutionsCSV renders the run's executed trades as CSV.
func RenderExecutionsCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("date,symbol,action,quantity,price\n")
	for _, e := range r.Executions {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%.6f\n",
			e.Date.Format("2006-01-02"), e.Symbol, e.Action, e.Quantity, e.Price))
	}

	return sb.String()
}
