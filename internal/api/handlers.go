package api

import (
	"encoding/json"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	"skincraft-api/internal/laby"
	"skincraft-api/internal/names"
	"skincraft-api/internal/profile"
)

const maxUpcomingNames = 10

func errorBody(code, message string) gin.H {
	return gin.H{"error": gin.H{"code": code, "message": message}}
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "SkinCraft API",
		"version":     "1.0.0",
		"description": "API for Minecraft player information",
		"endpoints": []gin.H{
			{"path": "/api/user/:identifier/profile", "description": "Get player profile by username or UUID"},
			{"path": "/api/user/:identifier/capes", "description": "Get player capes by username or UUID"},
			{"path": "/api/user/:identifier/skins", "description": "Get player skins by username or UUID"},
			{"path": "/api/capes", "description": "List all available Minecraft capes"},
			{"path": "/api/names", "description": "Get soon-to-be-available Minecraft names (first 10)"},
			{"path": "/api/names/:length", "description": "Get soon-to-be-available Minecraft names by length"},
			{"path": "/api/name/:username", "description": "Check if a specific Minecraft username is available"},
			{"path": "/api/skins/latest", "description": "Get the latest Minecraft skins"},
			{"path": "/api/skins/random", "description": "Get random Minecraft skins"},
			{"path": "/api/skins/daily", "description": "Get daily trending Minecraft skins"},
			{"path": "/api/skins/weekly", "description": "Get weekly trending Minecraft skins"},
			{"path": "/api/skins/monthly", "description": "Get monthly trending Minecraft skins"},
		},
	})
}

// respondCached replays a cached JSON payload when present.
func (s *Server) respondCached(c *gin.Context, key string) bool {
	if s.cache == nil {
		return false
	}
	cached, ok := s.cache.Get(c.Request.Context(), key)
	if !ok {
		return false
	}
	c.Header("X-Cache", "HIT")
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
	return true
}

func (s *Server) storeCached(c *gin.Context, key string, body any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(body)
	if err != nil {
		return
	}
	s.cache.Set(c.Request.Context(), key, string(data))
}

func (s *Server) getProfile(c *gin.Context) {
	identifier := c.Param("identifier")

	cacheKey := "profile:" + identifier
	if s.respondCached(c, cacheKey) {
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	resp, err := s.profiles.Profile(ctx, identifier)
	if err != nil {
		if profile.IsNotFound(err) {
			c.JSON(http.StatusNotFound, errorBody("not_found", "user not found"))
			return
		}
		s.log.Error("profile_fetch_failed", "identifier", identifier, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}

	s.storeCached(c, cacheKey, resp)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getUserCapes(c *gin.Context) {
	identifier := c.Param("identifier")

	cacheKey := "capes:" + identifier
	if s.respondCached(c, cacheKey) {
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	formatted, err := s.profiles.Capes(ctx, identifier)
	if err != nil {
		if profile.IsNotFound(err) {
			c.JSON(http.StatusNotFound, errorBody("not_found", "user not found"))
			return
		}
		s.log.Error("capes_fetch_failed", "identifier", identifier, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}

	body := gin.H{"CAPES": formatted}
	s.storeCached(c, cacheKey, body)
	c.JSON(http.StatusOK, body)
}

func (s *Server) getUserSkins(c *gin.Context) {
	identifier := c.Param("identifier")

	cacheKey := "skins:" + identifier
	if s.respondCached(c, cacheKey) {
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	formatted, err := s.profiles.Skins(ctx, identifier)
	if err != nil {
		if profile.IsNotFound(err) {
			c.JSON(http.StatusNotFound, errorBody("not_found", "user not found"))
			return
		}
		s.log.Error("skins_fetch_failed", "identifier", identifier, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}

	body := gin.H{"SKINS": formatted}
	s.storeCached(c, cacheKey, body)
	c.JSON(http.StatusOK, body)
}

func (s *Server) getAllCapes(c *gin.Context) {
	total, records, err := s.catalog.All()
	if err != nil {
		s.log.Error("cape_catalog_load_failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCapes": total,
		"capes":      records,
	})
}

func (s *Server) getUpcomingNames(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	list, err := s.names.UpcomingNames(ctx, laby.NamesQuery{})
	if err != nil {
		s.log.Error("names_fetch_failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}
	if len(list) > maxUpcomingNames {
		list = list[:maxUpcomingNames]
	}

	c.JSON(http.StatusOK, gin.H{"names": list})
}

func (s *Server) getNamesByLength(c *gin.Context) {
	length, err := strconv.Atoi(c.Param("length"))
	if err != nil || length < 3 || length > 16 {
		c.JSON(http.StatusBadRequest, errorBody("invalid_length", "length must be a number between 3 and 16"))
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	list, err := s.names.UpcomingNames(ctx, laby.NamesQuery{MinLength: length, MaxLength: length})
	if err != nil {
		s.log.Error("names_fetch_failed", "length", length, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}
	if len(list) > maxUpcomingNames {
		list = list[:maxUpcomingNames]
	}

	c.JSON(http.StatusOK, gin.H{
		"length": length,
		"names":  list,
	})
}

func (s *Server) checkName(c *gin.Context) {
	username := c.Param("username")
	if !names.ValidUsername(username) {
		c.JSON(http.StatusBadRequest, errorBody("invalid_username", "username must be 3-16 characters of letters, numbers, and underscores"))
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	result, err := s.predictor.Predict(ctx, username)
	if err != nil {
		s.log.Error("name_check_failed", "username", username, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) getLatestSkins(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	entries := s.gallery.Latest(ctx)
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, errorBody("no_skins", "could not retrieve latest skins at this time"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"skins": entries})
}

func (s *Server) getRandomSkins(c *gin.Context) {
	ctx, cancel := s.ctx(c)
	defer cancel()

	entries := s.gallery.Random(ctx)
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, errorBody("no_skins", "could not retrieve random skins at this time"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"skins": entries})
}

// getTrendingSkins serves the daily/weekly/monthly routes; the period is the
// trailing path segment.
func (s *Server) getTrendingSkins(c *gin.Context) {
	period := path.Base(c.Request.URL.Path)
	if period != "daily" && period != "weekly" && period != "monthly" {
		c.JSON(http.StatusBadRequest, errorBody("invalid_period", "period must be one of: daily, weekly, monthly"))
		return
	}

	ctx, cancel := s.ctx(c)
	defer cancel()

	entries := s.gallery.Trending(ctx, period)
	if len(entries) == 0 {
		c.JSON(http.StatusNotFound, errorBody("no_skins", "could not retrieve "+period+" trending skins at this time"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"skins":  entries,
	})
}
