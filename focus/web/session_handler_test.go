package web

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/models"
	"github.com/stretchr/testify/require"
)

type fakeInterventionStore struct {
	items    []*entity.Intervention
	total    int64
	pageable *models.Pageable
}

func (f *fakeInterventionStore) PageInterventions(ctx context.Context, sessionID int64, pageable *models.Pageable) ([]*entity.Intervention, int64, error) {
	f.pageable = pageable
	return f.items, f.total, nil
}

func TestListInterventionsPageEnvelope(t *testing.T) {
	st := &fakeInterventionStore{
		items: []*entity.Intervention{
			{SessionID: 1, Message: "回到任务上来"},
			{SessionID: 1, Message: "继续保持"},
		},
		total: 7,
	}
	h := &Handler{interventions: st}

	engine := route.NewEngine(config.NewOptions(nil))
	engine.GET("/api/sessions/:id/interventions", h.ListInterventions)

	w := ut.PerformRequest(engine, "GET", "/api/sessions/1/interventions?pageNo=2&pageSize=2", nil)
	result := w.Result()
	require.Equal(t, http.StatusOK, result.StatusCode())

	var envelope struct {
		Code int64 `json:"code"`
		Data struct {
			Total    int64                  `json:"total"`
			PageNo   int                    `json:"pageNo"`
			PageSize int                    `json:"pageSize"`
			Content  []*entity.Intervention `json:"content"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(result.Body(), &envelope))
	require.Equal(t, int64(0), envelope.Code)
	require.Equal(t, int64(7), envelope.Data.Total)
	require.Equal(t, 2, envelope.Data.PageNo)
	require.Equal(t, 2, envelope.Data.PageSize)
	require.Len(t, envelope.Data.Content, 2)
	require.Equal(t, "回到任务上来", envelope.Data.Content[0].Message)

	require.NotNil(t, st.pageable)
	require.Equal(t, 2, st.pageable.PageNo)
	require.Equal(t, 2, st.pageable.PageSize)
}
