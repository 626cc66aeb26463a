// Package server exposes the application over HTTP.
package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ankush0511/nutriwise/internal/app"
	"github.com/ankush0511/nutriwise/internal/llm"
	"github.com/ankush0511/nutriwise/internal/nutrition"
	"github.com/ankush0511/nutriwise/internal/profile"
	"github.com/ankush0511/nutriwise/internal/recipe"
)

// Server routes HTTP requests to the application layer.
type Server struct {
	app *app.App
}

// NewServer creates a new Server instance.
func NewServer(a *app.App) *Server {
	return &Server{app: a}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	router.Use(cors.New(config))

	router.GET("/health", s.health)

	api := router.Group("/api")
	{
		api.POST("/profiles", s.saveProfile)
		api.GET("/profiles", s.listProfiles)
		api.GET("/profiles/:name", s.getProfile)

		api.POST("/recipes/text", s.recipeFromText)
		api.POST("/recipes/audio", s.recipeFromAudio)
		api.POST("/recipes/image", s.recipeFromImage)

		api.POST("/analyze", s.analyzeLabel)

		api.POST("/mealplan", s.generateMealPlan)
		api.GET("/mealplan/:name", s.latestMealPlan)

		api.POST("/nutrients", s.nutrients)
		api.GET("/recommended", s.recommended)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"system": s.app.Health(c.Request.Context()),
	})
}

func (s *Server) saveProfile(c *gin.Context) {
	var p profile.UserProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile body: " + err.Error()})
		return
	}
	if err := s.app.SaveProfile(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile saved", "name": p.Name})
}

func (s *Server) getProfile(c *gin.Context) {
	p, err := s.app.LoadProfile(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) listProfiles(c *gin.Context) {
	names, err := s.app.ProfileNames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": names})
}

type textRecipeRequest struct {
	Ingredients string `json:"ingredients" binding:"required"`
}

func (s *Server) recipeFromText(c *gin.Context) {
	var req textRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredients field is required"})
		return
	}

	result, err := s.app.RecipeFromText(c.Request.Context(), req.Ingredients)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	writeRecipe(c, result)
}

func (s *Server) recipeFromAudio(c *gin.Context) {
	data, mimeType, ok := readUpload(c, "audio")
	if !ok {
		return
	}
	result, err := s.app.RecipeFromAudio(c.Request.Context(), mimeType, data)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	writeRecipe(c, result)
}

func (s *Server) recipeFromImage(c *gin.Context) {
	data, mimeType, ok := readUpload(c, "image")
	if !ok {
		return
	}
	result, err := s.app.RecipeFromImage(c.Request.Context(), mimeType, data)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	writeRecipe(c, result)
}

func (s *Server) analyzeLabel(c *gin.Context) {
	profileName := c.PostForm("profile")
	if profileName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile form field is required"})
		return
	}
	data, mimeType, ok := readUpload(c, "image")
	if !ok {
		return
	}

	result, err := s.app.AnalyzeLabel(c.Request.Context(), profileName, mimeType, data)
	if err != nil {
		status := upstreamStatus(err)
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type mealPlanRequest struct {
	ProfileName string `json:"profile_name" binding:"required"`
}

func (s *Server) generateMealPlan(c *gin.Context) {
	var req mealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile_name field is required"})
		return
	}

	result, err := s.app.GenerateDailyPlan(c.Request.Context(), req.ProfileName)
	if err != nil {
		status := upstreamStatus(err)
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) latestMealPlan(c *gin.Context) {
	stored, err := s.app.LatestPlan(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stored plan for profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan_id":    stored.ID,
		"plan":       stored.Plan,
		"markdown":   stored.Markdown,
		"created_at": stored.CreatedAt,
	})
}

type nutrientsRequest struct {
	Items []string `json:"items" binding:"required"`
}

func (s *Server) nutrients(c *gin.Context) {
	var req nutrientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items field is required"})
		return
	}

	result, err := s.app.Nutrients(c.Request.Context(), req.Items)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) recommended(c *gin.Context) {
	age, err := strconv.Atoi(c.Query("age"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "age query parameter must be an integer"})
		return
	}

	var sex nutrition.Sex
	switch strings.ToLower(c.Query("sex")) {
	case "male":
		sex = nutrition.Male
	case "female":
		sex = nutrition.Female
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "sex query parameter must be male or female"})
		return
	}

	c.JSON(http.StatusOK, s.app.Recommended(age, sex))
}

// upstreamStatus maps generation-call failures onto response codes: provider
// outages suggest a retry, everything else is a bad gateway.
func upstreamStatus(err error) int {
	if errors.Is(err, llm.ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func writeRecipe(c *gin.Context, result recipe.Result) {
	resp := gin.H{"recipe": result.Text}
	if result.Name != "" {
		resp["recipe_name"] = result.Name
		resp["image_url"] = recipe.ImageURL(result.Name)
	}
	c.JSON(http.StatusOK, resp)
}

// readUpload reads a multipart file field. On failure it writes the error
// response itself and returns ok=false.
func readUpload(c *gin.Context, field string) (data []byte, mimeType string, ok bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " file is required"})
		return nil, "", false
	}

	data, err = readAll(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read " + field + " upload"})
		return nil, "", false
	}

	mimeType = fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return data, mimeType, true
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
