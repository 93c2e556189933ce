package sessions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamweaver.app/sleep-bot/internal/common"
)

func TestDecodeSessionsEnvelopes(t *testing.T) {
	item := `{"createdAt":"2026-05-10T23:10:00Z","wakeUps":[{"awakenAt":"2026-05-11T07:00:00Z","dream":"a red door","quality":4}]}`

	docs := map[string]string{
		"bare array":         `[` + item + `]`,
		"sessions key":       `{"sessions":[` + item + `]}`,
		"data key":           `{"success":true,"data":[` + item + `]}`,
		"items key":          `{"items":[` + item + `],"total":1}`,
		"results key":        `{"results":[` + item + `]}`,
		"nested data":        `{"data":{"sessions":[` + item + `],"page":1}}`,
		"sessions over data": `{"sessions":[` + item + `],"data":"ignored"}`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			list, err := DecodeSessions([]byte(doc))
			require.NoError(t, err)
			require.Len(t, list, 1)

			s := list[0]
			assert.True(t, s.CreatedAt.Equal(time.Date(2026, 5, 10, 23, 10, 0, 0, time.UTC)))
			require.Len(t, s.WakeUps, 1)
			assert.Equal(t, "a red door", s.WakeUps[0].Dream)
			assert.Equal(t, 4, s.WakeUps[0].Quality)
			assert.Equal(t, s.ID, s.WakeUps[0].SessionID)
			require.NotNil(t, s.WakeUps[0].AwakenAt)
		})
	}
}

func TestDecodeSessionsSnakeCaseAndEpoch(t *testing.T) {
	doc := `[{"_id":"65f0c1","created_at":1778454600000,"wake_ups":[{"awaken_at":null,"dream_text":"falling"}]},
	         {"id":"2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d","createdAt":"2026-05-12T01:00:00.500+02:00","wakeUps":[]}]`

	list, err := DecodeSessions([]byte(doc))
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.True(t, list[0].CreatedAt.Equal(time.UnixMilli(1778454600000)))
	require.Len(t, list[0].WakeUps, 1)
	assert.Nil(t, list[0].WakeUps[0].AwakenAt)
	assert.Equal(t, "falling", list[0].WakeUps[0].Dream)
	assert.NotEqual(t, uuid.Nil, list[0].ID)

	assert.Equal(t, uuid.MustParse("2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d"), list[1].ID)
	assert.False(t, list[1].Completed())
}

func TestDecodeSessionsStableIDs(t *testing.T) {
	doc := []byte(`[{"createdAt":"2026-05-10T23:10:00Z"},{"_id":"abc","createdAt":"2026-05-11T23:10:00Z"}]`)

	first, err := DecodeSessions(doc)
	require.NoError(t, err)
	second, err := DecodeSessions(doc)
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, first[1].ID, second[1].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)
}

func TestDecodeSessionsEmptyArray(t *testing.T) {
	list, err := DecodeSessions([]byte(`{"data":[]}`))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDecodeSessionsErrors(t *testing.T) {
	_, err := DecodeSessions([]byte(`{"message":"ok"}`))
	assert.ErrorIs(t, err, common.ErrNoSessionArray)

	_, err = DecodeSessions([]byte(`"just a string"`))
	assert.ErrorIs(t, err, common.ErrNoSessionArray)

	_, err = DecodeSessions([]byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodeSessions([]byte(`[{"wakeUps":[]}]`))
	assert.ErrorContains(t, err, "createdAt is missing")

	_, err = DecodeSessions([]byte(`[{"createdAt":"yesterday"}]`))
	assert.ErrorContains(t, err, "session #0")

	_, err = DecodeSessions([]byte(`[42]`))
	assert.Error(t, err)
}
