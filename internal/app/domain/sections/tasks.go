package sections

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/app/domain"
	"github.com/techsupport-hub/portal/internal/app/models"
	"github.com/techsupport-hub/portal/internal/app/pages"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
)

// TaskHandlers is the admin task board.
type TaskHandlers struct {
	*domain.BaseHandler
}

func NewTaskHandlers(base *domain.BaseHandler) *TaskHandlers {
	return &TaskHandlers{BaseHandler: base}
}

func (h *TaskHandlers) ShowTaskBoard(c *gin.Context) {
	query := url.Values{}
	if status := c.Query("status"); status != "" {
		query.Set("status", status)
	}
	tasks, err := apiclient.NewResource[models.Task](h.Client(c, apiclient.GroupTasks)).
		List(c.Request.Context(), query)
	h.RenderPage(c, "Tasks - Tech Support", "Tasks", pages.TaskBoard(tasks, h.APINotice(c, err, "list-tasks")))
}

// AssignTask hands a task to a member and re-renders its assignment form.
func (h *TaskHandlers) AssignTask(c *gin.Context) {
	id := c.Param("id")
	task := models.Task{ID: id}

	var req models.AssignTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		h.RenderFragment(c, http.StatusBadRequest, "Tasks - Tech Support",
			pages.AssignForm(task, pages.ErrorNotice("Choose a member to assign.")))
		return
	}

	var updated models.Task
	err := h.Client(c, apiclient.GroupTasks).Post(c.Request.Context(), url.PathEscape(id)+"/assign", req, &updated)
	if err != nil {
		task.AssigneeID = req.AssigneeID
		h.RenderFragment(c, http.StatusBadGateway, "Tasks - Tech Support",
			pages.AssignForm(task, h.APINotice(c, err, "assign-task")))
		return
	}
	if updated.ID == "" {
		updated.ID = id
	}

	h.Logger.Info("Task assigned",
		zap.String("task_id", id),
		zap.String("assignee_id", req.AssigneeID))
	h.RenderFragment(c, http.StatusOK, "Tasks - Tech Support",
		pages.AssignForm(updated, pages.SuccessNotice("Assigned.")))
}
