package Models

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestUserAssociationsBelongToUserByID(t *testing.T) {
	for name, model := range map[string]interface{}{
		"ActivityLog":   &ActivityLog{},
		"ProjectMember": &ProjectMember{},
	} {
		parsed, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err, name)
		rel, ok := parsed.Relationships.Relations["User"]
		require.True(t, ok, name)
		assert.Equal(t, schema.BelongsTo, rel.Type, name)
		require.Len(t, rel.References, 1, name)
		assert.Equal(t, "ID", rel.References[0].PrimaryKey.Name, name)
		assert.Equal(t, "UserID", rel.References[0].ForeignKey.Name, name)
	}
}

func TestPreloadedActorHasName(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)

	// A numeric handle must not be mistaken for a row id.
	decoy := User{UserID: "1", Name: "Decoy", Password: []byte("x")}
	alice := User{UserID: "alice", Name: "Alice", Password: []byte("x")}
	require.NoError(t, db.Create(&decoy).Error)
	require.NoError(t, db.Create(&alice).Error)

	project := Project{Name: "Apollo", CreatedBy: alice.ID}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&ProjectMember{ProjectID: project.ID, UserID: alice.ID, Role: RoleAdmin}).Error)
	require.NoError(t, db.Create(&ActivityLog{
		UserID: alice.ID, ProjectID: project.ID, Action: ActionProjectCreated, Description: "created", Metadata: map[string]interface{}{},
	}).Error)

	var loaded Project
	require.NoError(t, db.Preload("Members.User").First(&loaded, project.ID).Error)
	require.Len(t, loaded.Members, 1)
	assert.Equal(t, "alice", loaded.Members[0].User.UserID)
	assert.Equal(t, "Alice", loaded.Members[0].User.Name)

	var logs []ActivityLog
	require.NoError(t, db.Preload("User").Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "Alice", logs[0].User.Name)
}

func TestIsDuplicateKey(t *testing.T) {
	db, err := OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, db.Create(&User{UserID: "ana", Name: "Ana", Password: []byte("x")}).Error)

	err = db.Create(&User{UserID: "ana", Name: "Other", Password: []byte("x")}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	assert.True(t, IsDuplicateKey(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, IsDuplicateKey(gorm.ErrRecordNotFound))
	assert.False(t, IsDuplicateKey(nil))
}
