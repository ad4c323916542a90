package controllers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const nominatimUserAgent = "CleanStreet/1.0 (contact@cleanstreet.example)"

var (
	geoClient     *resty.Client
	geoClientOnce sync.Once
)

func geocodeClient() *resty.Client {
	geoClientOnce.Do(func() {
		baseURL := os.Getenv("NOMINATIM_BASE_URL")
		if baseURL == "" {
			baseURL = "https://nominatim.openstreetmap.org"
		}
		geoClient = resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("User-Agent", nominatimUserAgent)
	})
	return geoClient
}

// geocodeAddress resolves a free-text address to coordinates via Nominatim.
// Callers treat failure as "no coordinates", never as a hard error.
func geocodeAddress(address string) (*float64, *float64, error) {
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}

	resp, err := geocodeClient().R().
		SetQueryParams(map[string]string{
			"q":               address,
			"format":          "json",
			"accept-language": "en",
			"limit":           "1",
		}).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, nil, err
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode())
	}
	if len(results) == 0 {
		return nil, nil, fmt.Errorf("no geocoding result for address")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, nil, err
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, nil, err
	}

	return &lat, &lon, nil
}

// ForwardGeocode proxies an address lookup to Nominatim
// GET /api/utils/forward?q=address
func ForwardGeocode(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q (query) required"})
		return
	}

	var data []map[string]interface{}
	resp, err := geocodeClient().R().
		SetQueryParams(map[string]string{
			"q":               query,
			"format":          "json",
			"accept-language": "en",
			"limit":           "1",
		}).
		SetResult(&data).
		Get("/search")
	if err != nil || resp.IsError() {
		logrus.WithError(err).Warn("Forward geocoding request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Forward geocoding failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}

// ReverseGeocode proxies a coordinate lookup to Nominatim
// GET /api/utils/reverse?lat=...&lon=...
func ReverseGeocode(c *gin.Context) {
	lat := c.Query("lat")
	lon := c.Query("lon")
	if lat == "" || lon == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon required"})
		return
	}

	var data map[string]interface{}
	resp, err := geocodeClient().R().
		SetQueryParams(map[string]string{
			"lat":             lat,
			"lon":             lon,
			"format":          "json",
			"accept-language": "en",
			"zoom":            "18",
		}).
		SetResult(&data).
		Get("/reverse")
	if err != nil || resp.IsError() {
		logrus.WithError(err).Warn("Reverse geocoding request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Geocoding failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}
