package api

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"options-trading-bot/internal/analysis"
	"options-trading-bot/internal/marketdata"
)

var (
	errNoExpirations = errors.New("no future expirations available")
	errNoATMContract = errors.New("no at-the-money contract available")
)

func parseOptionType(raw string) (marketdata.OptionType, bool) {
	switch raw {
	case string(marketdata.CallOption):
		return marketdata.CallOption, true
	case string(marketdata.PutOption):
		return marketdata.PutOption, true
	}
	return "", false
}

func (s *Server) handleAgentStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"agents":    s.orchestrator.AgentStatus(),
		"timestamp": time.Now().UTC(),
	})
}

type performanceRequest struct {
	PnL float64 `json:"pnl" binding:"required"`
}

func (s *Server) handleAgentPerformance(c *gin.Context) {
	name := c.Param("name")

	var req performanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	s.orchestrator.UpdateAgentPerformance(name, req.PnL)

	status := s.orchestrator.AgentStatus()
	c.JSON(http.StatusOK, gin.H{
		"agent":  name,
		"status": status[name],
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	symbol := c.Param("symbol")

	snap, err := s.features.GetSnapshot(symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "snapshot unavailable: " + err.Error()})
		return
	}

	intent := s.orchestrator.AnalyzeSymbol(symbol, snap)
	if intent == nil {
		c.JSON(http.StatusOK, gin.H{
			"symbol": symbol,
			"intent": nil,
			"reason": "no actionable intent",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"intent": intent,
	})
}

func (s *Server) handleRegime(c *gin.Context) {
	symbol := c.Param("symbol")

	snap, err := s.features.GetSnapshot(symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "snapshot unavailable: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.orchestrator.Classify(snap))
}

func (s *Server) handleIVMetrics(c *gin.Context) {
	symbol := c.Param("symbol")

	iv, err := s.atmImpliedVol(symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.ivCalc.Metrics(symbol, iv))
}

func (s *Server) handleGEX(c *gin.Context) {
	symbol := c.Param("symbol")

	snap, err := s.features.GetSnapshot(symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "snapshot unavailable: " + err.Error()})
		return
	}
	spot := snap.Price()

	expiration, err := s.nearestExpiration(symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	chain, err := s.options.GetOptionsChain(symbol, expiration)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "options chain unavailable: " + err.Error()})
		return
	}

	gex := analysis.CalculateGEXProxy(chain, spot)
	c.JSON(http.StatusOK, gin.H{
		"symbol":         symbol,
		"expiration":     expiration.Format("2006-01-02"),
		"gex":            gex,
		"interpretation": analysis.InterpretGEX(gex.TotalGEX),
	})
}

func (s *Server) handleOptionsChain(c *gin.Context) {
	symbol := c.Param("symbol")

	expiration, err := s.nearestExpiration(symbol)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if raw := c.Query("expiration"); raw != "" {
		parsed, perr := time.Parse("2006-01-02", raw)
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expiration must be YYYY-MM-DD"})
			return
		}
		expiration = parsed
	}

	chain, err := s.options.GetOptionsChain(symbol, expiration)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "options chain unavailable: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":     symbol,
		"expiration": expiration.Format("2006-01-02"),
		"contracts":  chain,
	})
}

type greeksRequest struct {
	Spot          float64 `json:"spot" binding:"required"`
	Strike        float64 `json:"strike" binding:"required"`
	DaysToExpiry  float64 `json:"days_to_expiry" binding:"required"`
	Volatility    float64 `json:"volatility" binding:"required"`
	OptionType    string  `json:"option_type" binding:"required"`
	DividendYield float64 `json:"dividend_yield"`
}

func (s *Server) handleGreeks(c *gin.Context) {
	var req greeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	optType, ok := parseOptionType(req.OptionType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "option_type must be call or put"})
		return
	}

	result := s.engine.Calculate(req.Spot, req.Strike, req.DaysToExpiry/365.0, req.Volatility, optType, req.DividendYield)
	c.JSON(http.StatusOK, result)
}

type solveIVRequest struct {
	MarketPrice   float64 `json:"market_price" binding:"required"`
	Spot          float64 `json:"spot" binding:"required"`
	Strike        float64 `json:"strike" binding:"required"`
	DaysToExpiry  float64 `json:"days_to_expiry" binding:"required"`
	OptionType    string  `json:"option_type" binding:"required"`
	DividendYield float64 `json:"dividend_yield"`
}

func (s *Server) handleSolveIV(c *gin.Context) {
	var req solveIVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	optType, ok := parseOptionType(req.OptionType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "option_type must be call or put"})
		return
	}

	iv, converged := s.engine.SolveIV(req.MarketPrice, req.Spot, req.Strike, req.DaysToExpiry/365.0, optType, req.DividendYield)
	if !converged {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "solver did not converge for given inputs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"implied_vol": iv})
}

func (s *Server) handleLastCycle(c *gin.Context) {
	result := s.scan.LastResult()
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"result": nil, "reason": "no cycle completed yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleRunCycle(c *gin.Context) {
	c.JSON(http.StatusOK, s.scan.RunCycle())
}

// atmImpliedVol reads the current at-the-money call IV for a symbol
func (s *Server) atmImpliedVol(symbol string) (float64, error) {
	expiration, err := s.nearestExpiration(symbol)
	if err != nil {
		return 0, err
	}
	contract, err := s.options.GetATMOption(symbol, expiration, marketdata.CallOption)
	if err != nil {
		return 0, err
	}
	if contract == nil {
		return 0, errNoATMContract
	}
	return contract.ImpliedVol, nil
}

func (s *Server) nearestExpiration(symbol string) (time.Time, error) {
	dates, err := s.options.GetExpirationDates(symbol)
	if err != nil {
		return time.Time{}, err
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	for _, d := range dates {
		if d.After(time.Now()) {
			return d, nil
		}
	}
	return time.Time{}, errNoExpirations
}
