package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함 (16개 로케일)

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이메일/비밀번호
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 잘못된 토큰

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // 접근 권한 없음
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 권한 정보 없음
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // 관리자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"  // 범위 초과
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 도구 / 태그 (TOOL_, TAG_) ====================
	ToolNotFound      = "TOOL_NOT_FOUND"      // 도구 없음
	ToolInactive      = "TOOL_INACTIVE"       // 비활성 도구
	ToolSlugExists    = "TOOL_SLUG_EXISTS"    // slug 중복
	TagNotFound       = "TAG_NOT_FOUND"       // 태그 없음
	TagSlugExists     = "TAG_SLUG_EXISTS"     // slug 중복
	TagProtected      = "TAG_PROTECTED"       // 시스템 태그
	RelationDangling  = "RELATION_DANGLING"   // 존재하지 않는 도구/태그를 가리키는 연결
	RelationUntagged  = "RELATION_UNTAGGED"   // 태그 없는 도구
	RelationUnused    = "RELATION_UNUSED"     // 사용되지 않는 태그
	RelationInactive  = "RELATION_INACTIVE"   // 비활성 도구에 연결된 태그
	RelationOverload  = "RELATION_OVERLOADED" // 태그가 너무 많은 도구
	RelationSingleUse = "RELATION_SINGLE_USE" // 하나의 도구에만 쓰인 태그

	// ==================== 대량 작업 (BULK_) ====================
	BulkInvalidType          = "BULK_INVALID_TYPE"          // assign/remove 이외
	BulkConfirmationRequired = "BULK_CONFIRMATION_REQUIRED" // 확인 필요

	// ==================== 분석 / 모니터링 (ANALYTICS_, ALERT_) ====================
	AnalyticsInvalidPeriod = "ANALYTICS_INVALID_PERIOD" // 잘못된 집계 단위
	AnalyticsInvalidRange  = "ANALYTICS_INVALID_RANGE"  // 시작 > 종료, 5년 초과
	AlertNotFound          = "ALERT_NOT_FOUND"          // 알림 없음
	ErrorLogNotFound       = "ERROR_LOG_NOT_FOUND"      // 에러 로그 없음

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
)
