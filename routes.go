package main

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/karthikpasupuleti/portfolio/portfolio"
	"github.com/karthikpasupuleti/portfolio/typewriter"
)

const maxFrames = 500

type filterButton struct {
	Label  string
	URL    string
	Active bool
}

// filterButtons is the "All" button followed by one button per tag.
func (s *site) filterButtons(selected string) []filterButton {
	categories := append([]string{portfolio.CategoryAll}, s.content.Tags()...)
	buttons := make([]filterButton, 0, len(categories))
	for _, cat := range categories {
		label := cat
		if cat == portfolio.CategoryAll {
			label = "All"
		}
		buttons = append(buttons, filterButton{
			Label:  label,
			URL:    "/projects?" + url.Values{"category": {cat}}.Encode(),
			Active: cat == selected,
		})
	}
	return buttons
}

type frame struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Mode    string `json:"mode"`
	DelayMs int64  `json:"delay_ms"`
}

func setupPublicRoutes(r *gin.Engine, s *site) {
	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"profile":     s.content.Profile,
			"phrases":     s.content.Typing.Phrases,
			"skillGroups": s.content.SkillGroups,
			"otherSkills": s.content.OtherSkills,
			"filters":     s.filterButtons(portfolio.CategoryAll),
			"projects":    s.content.Projects,
		})
	})

	// HTMX project gallery, filtered by tag
	r.GET("/projects", func(c *gin.Context) {
		category := c.DefaultQuery("category", portfolio.CategoryAll)
		c.HTML(http.StatusOK, "projects.html", gin.H{
			"filters":  s.filterButtons(category),
			"projects": portfolio.Filter(s.content.Projects, category),
		})
	})

	r.GET("/skills-content", func(c *gin.Context) {
		c.HTML(http.StatusOK, "skills.html", gin.H{
			"skillGroups": s.content.SkillGroups,
			"otherSkills": s.content.OtherSkills,
		})
	})

	// Outbound project links go through here so clicks can be counted
	r.GET("/projects/:id/:link", func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.String(http.StatusNotFound, "project not found")
			return
		}
		p, ok := portfolio.FindProject(s.content.Projects, id)
		if !ok {
			c.String(http.StatusNotFound, "project not found")
			return
		}
		link := c.Param("link")
		target, ok := p.Link(link)
		if !ok {
			c.String(http.StatusNotFound, "link not found")
			return
		}

		if c.GetHeader("DNT") != "1" {
			hashed := s.admin.hashIP(c.ClientIP())
			s.goBackground(func() {
				if err := s.store.RecordClick(context.Background(), id, link, hashed); err != nil {
					s.logger.Errorw("error recording click", "project", id, "link", link, "error", err)
				}
			})
		}
		c.Redirect(http.StatusFound, target)
	})

	r.GET("/hero/typed", s.heroStream)
	r.GET("/hero/frames", s.heroFrames)

	// HTMX Contact form endpoint - returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
		})
	})
	r.POST("/contact", s.handleContact)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"viewers": s.viewers.Load(),
		})
	})
}

// heroStream runs one typewriter per viewer and pushes its text as
// server-sent events. The animator lives exactly as long as the request.
func (s *site) heroStream(c *gin.Context) {
	frames := make(chan typewriter.State, 1)
	anim, err := typewriter.New(s.content.TypewriterConfig(),
		typewriter.WithClock(s.clk),
		typewriter.WithLogger(s.logger),
		typewriter.WithTickHook(func(st typewriter.State) {
			// keep only the newest frame for a slow viewer
			select {
			case <-frames:
			default:
			}
			frames <- st
		}),
	)
	if err != nil {
		s.logger.Errorw("unable to create typewriter", "error", err)
		c.String(http.StatusInternalServerError, "typewriter unavailable")
		return
	}
	defer anim.Close()

	ctx := c.Request.Context()
	if err := anim.Start(ctx); err != nil {
		s.logger.Errorw("unable to start typewriter", "error", err)
		c.String(http.StatusInternalServerError, "typewriter unavailable")
		return
	}
	s.viewers.Add(1)
	defer s.viewers.Add(-1)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	sendTyped(c, anim.Text())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case st := <-frames:
			sendTyped(c, st.Text)
			return true
		}
	})
}

// sendTyped emits one typed event. htmx swaps the data in as HTML, so the
// text is escaped first.
func sendTyped(c *gin.Context, text string) {
	c.SSEvent("typed", template.HTMLEscapeString(text))
}

// heroFrames returns a precomputed schedule for clients that animate locally.
func (s *site) heroFrames(c *gin.Context) {
	m, err := typewriter.NewMachine(s.content.TypewriterConfig())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	n := m.CycleLength()
	if raw := c.Query("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a non-negative integer"})
			return
		}
	}
	if n > maxFrames {
		n = maxFrames
	}

	initial := m.State()
	out := make([]frame, 0, n)
	for _, st := range m.Frames(n) {
		out = append(out, frame{
			Index:   st.Index,
			Text:    st.Text,
			Mode:    st.Mode.String(),
			DelayMs: st.Delay.Milliseconds(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"initial_delay_ms": initial.Delay.Milliseconds(),
		"frames":           out,
	})
}
