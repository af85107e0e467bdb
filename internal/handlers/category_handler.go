package handlers

import (
	"context"
	"fmt"
	"strings"

	"finbot/internal/services"
)

// CategoryHandler handles the category commands.
type CategoryHandler struct {
	userService     services.UserServicer
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(userService services.UserServicer, categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{
		userService:     userService,
		categoryService: categoryService,
	}
}

// AddCategory handles /add_category <name>.
func (h *CategoryHandler) AddCategory(ctx context.Context, u Update) Response {
	user, err := h.userService.CheckSession(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}

	category, err := h.categoryService.CreateCategory(ctx, user.ID, u.Args)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return Response{Text: fmt.Sprintf("✅ Category created: %s (id %d)", category.Name, category.ID)}
}

// ListCategories handles /list_categories.
func (h *CategoryHandler) ListCategories(ctx context.Context, u Update) Response {
	user, err := h.userService.CheckSession(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}

	categories, err := h.categoryService.ListCategories(ctx, user.ID)
	if err != nil {
		return errorResponse(ctx, err)
	}
	if len(categories) == 0 {
		return Response{Text: "You have no categories. Create one with /add_category <name>."}
	}

	var b strings.Builder
	b.WriteString("🏷️ Your categories:\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "\n• #%d %s", c.ID, c.Name)
		if c.IsDefault {
			b.WriteString(" (default)")
		}
		if c.IsEssential {
			b.WriteString(" ⭐")
		}
	}
	b.WriteString("\n\n⭐ essential spending")
	return Response{Text: b.String()}
}

// DeleteCategory handles /delete_category <id>.
func (h *CategoryHandler) DeleteCategory(ctx context.Context, u Update) Response {
	user, err := h.userService.CheckSession(ctx, u.ActorID)
	if err != nil {
		return errorResponse(ctx, err)
	}

	id, err := parseID(u.Args, "Usage: /delete_category <id>. See the ids with /list_categories.")
	if err != nil {
		return errorResponse(ctx, err)
	}

	if err := h.categoryService.DeleteCategory(ctx, user.ID, id); err != nil {
		return errorResponse(ctx, err)
	}
	return Response{Text: "🗑️ Category removed."}
}
