package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadResidents(t *testing.T) {
	input := `name,name_reading,room_number,floor,gender
山田 花子,やまだ はなこ,101,1F,女
王淑英,,201,2F,女
`

	residents, err := ReadResidents(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, residents, 2)
	assert.Equal(t, "やまだ はなこ", residents[0].NameReading)
	assert.Equal(t, "101", residents[0].RoomNumber)
	assert.Equal(t, "wang shu ying", residents[1].NameReading)
	assert.Equal(t, "2F", residents[1].Floor)
}

func TestReadResidents_BadHeader(t *testing.T) {
	_, err := ReadResidents(strings.NewReader("name,room_number\n张三,101\n"))
	assert.Error(t, err)
}

func TestReadResidents_MissingRoom(t *testing.T) {
	input := `name,name_reading,room_number,floor,gender
张三,zhang san,,1F,男
`
	_, err := ReadResidents(strings.NewReader(input))
	assert.ErrorContains(t, err, "第 2 行")
}
