package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blogread/services"
)

// ListPostsHandler godoc
// @Summary      List posts
// @Description  List post summaries with pagination; bodies are stripped
// @Tags         posts
// @Param        page       query  int  false  "Page number (1-based)"
// @Param        page_size  query  int  false  "Page size (<=100)"
// @Produce      json
func ListPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, ok := pagingParams(c)
		if !ok {
			return
		}
		resp, err := svc.Page(c.Request.Context(), page, pageSize)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListPostIDsHandler godoc
// @Summary      List post ids
// @Description  Enumerate all post ids without hydration
// @Tags         posts
// @Produce      json
func ListPostIDsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ids, err := svc.ListIDs(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ids": ids})
	}
}

// GetPostHandler godoc
// @Summary      Get post by id
// @Description  Get a single fully hydrated post
// @Tags         posts
// @Param        id  path  int  true  "Post id"
// @Produce      json
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		post, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// GetPostBySlugHandler godoc
// @Summary      Get post by slug
// @Tags         posts
// @Param        slug  path  string  true  "Post slug"
// @Produce      json
func GetPostBySlugHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, post)
	}
}

// PostsByCategoryHandler godoc
// @Summary      List posts in a category
// @Tags         categories
// @Param        id         path   int  true   "Category id"
// @Param        page       query  int  false  "Page number (1-based)"
// @Param        page_size  query  int  false  "Page size (<=100)"
// @Produce      json
func PostsByCategoryHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		page, pageSize, ok := pagingParams(c)
		if !ok {
			return
		}
		resp, err := svc.PageByCategory(c.Request.Context(), id, page, pageSize)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PostsByTagHandler godoc
// @Summary      List posts with a tag
// @Tags         tags
// @Param        id         path   int  true   "Tag id"
// @Param        page       query  int  false  "Page number (1-based)"
// @Param        page_size  query  int  false  "Page size (<=100)"
// @Produce      json
func PostsByTagHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		page, pageSize, ok := pagingParams(c)
		if !ok {
			return
		}
		resp, err := svc.PageByTag(c.Request.Context(), id, page, pageSize)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SearchPostsHandler godoc
// @Summary      Search posts
// @Description  Case-insensitive substring search over post bodies
// @Tags         posts
// @Param        q          query  string  false  "Search term; empty matches everything"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Produce      json
func SearchPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, ok := pagingParams(c)
		if !ok {
			return
		}
		resp, err := svc.Search(c.Request.Context(), c.Query("q"), page, pageSize)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RefreshPostHandler godoc
// @Summary      Apply a pending post update
// @Description  Re-reads the record and cascades cache refreshes; partial
// cascade failures degrade the result but do not fail it
// @Tags         posts
// @Param        id  path  int  true  "Post id"
// @Produce      json
func RefreshPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		res, err := svc.ApplyUpdate(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		warnings := make([]string, 0, len(res.Warnings))
		for _, w := range res.Warnings {
			warnings = append(warnings, w.Err.Error())
		}
		c.JSON(http.StatusOK, gin.H{"post": res.Post, "warnings": warnings})
	}
}

// DeletePostHandler godoc
// @Summary      Delete post
// @Tags         posts
// @Param        id  path  int  true  "Post id"
// @Produce      json
func DeletePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		if err := svc.Remove(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
	}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func pagingParams(c *gin.Context) (page, pageSize int, ok bool) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_size must be between 1 and 100"})
		return 0, 0, false
	}
	return page, pageSize, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrSourceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
