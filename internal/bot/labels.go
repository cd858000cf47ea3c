package bot

// Menu labels. Each label has exactly one route.
const (
	LabelIntern  = "👶 Я стажер"
	LabelVeteran = "🧠 Я в команде"

	LabelCourses    = "📚 Курсы"
	LabelBalance    = "💰 Мой баланс"
	LabelCabinet    = "👤 Личный кабинет"
	LabelGraduate   = "🎓 Завершить стажировку"
	LabelBack       = "🔙 Назад"
	LabelMainMenu   = "🏠 Главное меню"
	LabelFun        = "🎮 Развлечения"
	LabelPVP        = "⚔️ PVP битва"
	LabelShop       = "🛒 Магазин"
	LabelGift       = "🎁 Подарить баллы"
	LabelTapper     = "🕹 Тапалка"
	LabelEvents     = "📅 Мероприятия"
	LabelAllEvents  = "📋 Все мероприятия"
	LabelBook       = "✍️ Записаться"
	LabelMyBookings = "🗓 Мои записи"

	LabelTasks        = "📋 Задачи"
	LabelNewTask      = "➕ Новая задача"
	LabelMyTasks      = "📥 Мои задачи"
	LabelIssuedTasks  = "📤 Выданные задачи"
	LabelCompleteTask = "✅ Выполнить задачу"

	LabelVacation        = "🏖 Отпуск"
	LabelVacationRequest = "📝 Подать заявку"
	LabelVacationBalance = "📊 Баланс отпуска"
	LabelMyVacations     = "📜 Мои заявки"

	LabelAchievements   = "🏆 Достижения"
	LabelNewAchievement = "➕ Новое достижение"
	LabelFeed           = "🏅 Лента достижений"

	LabelContacts      = "📇 Контакты"
	LabelFindContact   = "🔍 Найти контакт"
	LabelAllContacts   = "📒 Все контакты"
	LabelStatus        = "🟢 Статус"
	LabelOnline        = "🟢 Онлайн"
	LabelAway          = "🟡 Отошел"
	LabelBusy          = "🔴 Занят"
	LabelOffline       = "⚫ Оффлайн"
	LabelStatusMessage = "✏️ Сообщение статуса"

	LabelBroadcast       = "📢 Рассылка"
	LabelReviewTests     = "✅ Проверка тестов"
	LabelReviewVacations = "🏖 Заявки на отпуск"
	LabelManageEvents    = "📅 Управление мероприятиями"
	LabelCreateEvent     = "🆕 Создать мероприятие"
	LabelEditEvent       = "✏️ Изменить мероприятие"
	LabelDeleteEvent     = "🗑 Удалить мероприятие"
	LabelListEvents      = "📃 Список мероприятий"
	LabelManageBalances  = "💰 Управление балансами"
	LabelCredit          = "➕ Начислить"
	LabelDebit           = "➖ Списать"
	LabelAddContact      = "📇 Добавить контакт"
	LabelInvoice         = "🧾 Создать счет"
	LabelStats           = "📊 Статистика"
	LabelUsers           = "👥 Пользователи"
	LabelLeaveAdmin      = "🚪 Выйти из админки"
	LabelAdminPanel      = "🔐 Админ-панель"
	LabelSkip            = "⏭ Пропустить"
	LabelDone            = "✅ Готово"
	LabelYes             = "✅ Да"
	LabelNo              = "❌ Нет"
	LabelTargetAll       = "👥 Всем"
	LabelTargetInterns   = "👶 Стажерам"
	LabelTargetVeterans  = "🧠 Сотрудникам"
	LabelTargetUser      = "👤 Одному пользователю"
)

// Menu names kept on the navigation stack.
const (
	menuRoot          = "root"
	menuCourses       = "courses"
	menuFun           = "fun"
	menuEvents        = "events"
	menuTasks         = "tasks"
	menuVacation      = "vacation"
	menuAchievements  = "achievements"
	menuContacts      = "contacts"
	menuStatus        = "status"
	menuAdmin         = "admin"
	menuAdminEvents   = "admin_events"
	menuAdminBalances = "admin_balances"
)

// Dialogue kinds.
const (
	dlgRegistration       = "registration"
	dlgGift               = "gift"
	dlgTaskCreate         = "task_create"
	dlgTaskComplete       = "task_complete"
	dlgTaskCancel         = "task_cancel"
	dlgBooking            = "event_booking"
	dlgEventCreate        = "event_create"
	dlgEventEdit          = "event_edit"
	dlgEventDelete        = "event_delete"
	dlgBroadcast          = "broadcast"
	dlgVacation           = "vacation_request"
	dlgReview             = "review_comment"
	dlgInvoice            = "invoice"
	dlgContactCreate      = "contact_create"
	dlgContactSearch      = "contact_search"
	dlgBalance            = "balance"
	dlgAchievement        = "achievement"
	dlgAchievementComment = "achievement_comment"
	dlgStatusMessage      = "status_message"
	dlgSubmission         = "submission"
	dlgAdminLogin         = "admin_login"
)

// Dialogue steps.
const (
	stepProfileText    = "awaiting_profile_text"
	stepSelectUser     = "select_user"
	stepSelectRecip    = "select_recipient"
	stepSelectAssignee = "select_assignee"
	stepEnterAmount    = "enter_amount"
	stepEnterMessage   = "enter_message"
	stepEnterTitle     = "enter_title"
	stepEnterDesc      = "enter_description"
	stepSelectPriority = "select_priority"
	stepSelectReward   = "select_reward"
	stepEnterDueDate   = "enter_due_date"
	stepSelectTask     = "select_task"
	stepEnterReason    = "enter_reason"
	stepSelectSlot     = "select_slot"
	stepCategory       = "category"
	stepName           = "name"
	stepDate           = "date"
	stepTime           = "time"
	stepLocation       = "location"
	stepMaxSeats       = "max_participants"
	stepReward         = "reward"
	stepSelectField    = "select_field"
	stepEnterValue     = "enter_value"
	stepConfirm        = "confirm"
	stepSelectTarget   = "select_target"
	stepEnterText      = "enter_text"
	stepCollectMedia   = "collect_media"
	stepStartDate      = "start_date"
	stepEndDate        = "end_date"
	stepType           = "type"
	stepReason         = "reason"
	stepEnterComment   = "enter_comment"
	stepOrgName        = "org_name"
	stepOrgAddress     = "org_address"
	stepWorkType       = "work_type"
	stepQuantity       = "quantity"
	stepUnitAmount     = "unit_amount"
	stepCompany        = "company"
	stepContactName    = "contact_name"
	stepPosition       = "position"
	stepEmail          = "email"
	stepPhone          = "phone"
	stepTelegram       = "telegram"
	stepNotes          = "notes"
	stepEnterQuery     = "enter_query"
	stepUploadPhoto    = "upload_photo"
	stepEnterScore     = "enter_score"
	stepEnterPassword  = "enter_password"
)
