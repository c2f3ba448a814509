package http

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"pressroom/internal/audit"
	"pressroom/internal/auth"
	"pressroom/internal/database/posts"
	"pressroom/internal/entities"
)

// PostsController handles the post feed and post mutations.
type PostsController struct {
	posts     *posts.Repository
	auditor   *audit.Recorder
	templates *template.Template
}

// NewPostsController creates the posts controller. Like the auth controller
// it renders JSON when the templating layer is absent.
func NewPostsController(repo *posts.Repository, auditor *audit.Recorder, templatesPath string) *PostsController {
	tmpl, err := template.ParseGlob(filepath.Join(templatesPath, "*.html"))
	if err != nil {
		tmpl = nil
	}
	return &PostsController{
		posts:     repo,
		auditor:   auditor,
		templates: tmpl,
	}
}

// Home renders the public feed: all posts, newest first. Anonymous readers
// see the same feed as authenticated ones.
func (pc *PostsController) Home(c *gin.Context) {
	allPosts, err := pc.posts.ListRecent()
	if err != nil {
		log.Printf("Failed to list posts: %v", err)
		c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	pc.render(c, http.StatusOK, "index.html", gin.H{
		"Title":     "Home",
		"Posts":     allPosts,
		"User":      auth.CurrentUser(c),
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

// CreatePostPage renders the post composition form.
func (pc *PostsController) CreatePostPage(c *gin.Context) {
	pc.render(c, http.StatusOK, "create_post.html", gin.H{
		"Title":     "New Post",
		"User":      auth.CurrentUser(c),
		"CSRFToken": auth.GetCSRFToken(c),
		"Error":     c.Query("error"),
	})
}

// CreatePost stores a new post attributed to the current user.
func (pc *PostsController) CreatePost(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")
	if title == "" || content == "" {
		pc.render(c, http.StatusBadRequest, "create_post.html", gin.H{
			"Title":     "New Post",
			"User":      user,
			"CSRFToken": auth.GetCSRFToken(c),
			"Error":     "Title and content are required",
			"PostTitle": title,
			"Content":   content,
		})
		return
	}

	post := &entities.Post{
		Title:    title,
		Content:  content,
		AuthorID: user.ID,
	}
	if err := pc.posts.Create(post); err != nil {
		log.Printf("Failed to create post: %v", err)
		pc.render(c, http.StatusInternalServerError, "create_post.html", gin.H{
			"Title":     "New Post",
			"User":      user,
			"CSRFToken": auth.GetCSRFToken(c),
			"Error":     "Failed to save the post. Please try again.",
			"PostTitle": title,
			"Content":   content,
		})
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// DeletePost removes a post after the full mutation gate. Authentication is
// decided first, then existence, then permission, so an anonymous caller
// learns nothing about which post IDs exist.
func (pc *PostsController) DeletePost(c *gin.Context) {
	actor := auth.CurrentUser(c)
	if actor == nil {
		c.String(http.StatusUnauthorized, "You must be logged in to do that")
		return
	}

	var post *entities.Post
	if id, err := strconv.ParseUint(c.Param("id"), 10, 32); err == nil {
		post, err = pc.posts.GetByID(uint(id))
		if err != nil && !errors.Is(err, posts.ErrPostNotFound) {
			log.Printf("Failed to load post %d: %v", id, err)
			c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
			return
		}
	}

	switch verdict := auth.DecideMutation(actor, post); verdict {
	case auth.VerdictAllow:
		// fall through to the delete below
	case auth.VerdictNotFound:
		c.String(http.StatusNotFound, "Post not found")
		return
	case auth.VerdictForbidden:
		c.String(http.StatusForbidden, "Only the author or an administrator can delete this post")
		return
	default:
		c.String(verdict.Status(), "You must be logged in to do that")
		return
	}

	if err := pc.posts.Delete(post.ID); err != nil {
		if errors.Is(err, posts.ErrPostNotFound) {
			c.String(http.StatusNotFound, "Post not found")
			return
		}
		log.Printf("Failed to delete post %d: %v", post.ID, err)
		c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	pc.auditor.PostDeleted(actor.ID, actor.Username, post.ID)
	c.Redirect(http.StatusSeeOther, "/")
}

// render executes a template or falls back to JSON.
func (pc *PostsController) render(c *gin.Context, status int, name string, data gin.H) {
	if pc.templates == nil {
		c.JSON(status, data)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := pc.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		c.String(http.StatusInternalServerError, "Template error: %v", err)
	}
}
