package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForUserType_Admin(t *testing.T) {
	set := NewSet(ForUserType(Admin)...)
	assert.True(t, set.Has(AccountsManage))
	assert.True(t, set.Has(PatientsDelete))
	assert.True(t, set.Has(SettingsManage))
}

func TestForUserType_FieldStaff(t *testing.T) {
	for _, ut := range []string{Midwife, CommunityHealthWorker} {
		set := NewSet(ForUserType(ut)...)
		assert.True(t, set.Has(PatientsWrite), ut)
		assert.True(t, set.Has(AntenatalWrite), ut)
		assert.False(t, set.Has(AccountsManage), ut)
		assert.False(t, set.Has(ReportsView), ut)
	}
}

func TestForUserType_Unknown(t *testing.T) {
	assert.Empty(t, ForUserType("visitor"))
	assert.False(t, ValidUserType("visitor"))
}

func TestForUserType_ReturnsCopy(t *testing.T) {
	perms := ForUserType(Midwife)
	perms[0] = AccountsManage
	assert.NotEqual(t, AccountsManage, ForUserType(Midwife)[0])
}

func TestUserTypes_Sorted(t *testing.T) {
	assert.Equal(t, []string{Admin, CommunityHealthWorker, DataClerk, Midwife, Supervisor}, UserTypes())
}

func TestSet_FromStrings(t *testing.T) {
	set := FromStrings(Strings([]Permission{ReportsView, KitsRead}))
	assert.True(t, set.HasAny(AccountsManage, ReportsView))
	assert.False(t, set.HasAny(AccountsManage, PatientsWrite))
}
